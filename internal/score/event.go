// Package score builds Csound score events and serializes them to the
// line-oriented score format.
package score

import (
	"math"
	"strconv"
	"strings"
)

// Event is one "i" statement: instrument, start, duration, then p4 onward.
type Event struct {
	Instrument int
	Start      float64
	Duration   float64
	Params     []float64
}

// End returns the time the event stops sounding.
func (e Event) End() float64 {
	return e.Start + e.Duration
}

// String formats the event as a score line without the trailing newline.
func (e Event) String() string {
	var sb strings.Builder
	e.writeTo(&sb)
	return sb.String()
}

func (e Event) writeTo(sb *strings.Builder) {
	sb.WriteByte('i')
	sb.WriteString(strconv.Itoa(e.Instrument))
	sb.WriteByte(' ')
	sb.WriteString(formatNumber(e.Start))
	sb.WriteByte(' ')
	sb.WriteString(formatNumber(e.Duration))
	for _, p := range e.Params {
		sb.WriteByte(' ')
		sb.WriteString(formatNumber(p))
	}
}

// formatNumber rounds away float noise from running sums and prints the
// shortest form, so 3 prints as "3" and 0.1+0.2 as "0.3".
func formatNumber(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // drop negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Document is an ordered list of score events.
type Document struct {
	Events []Event
}

// Append adds events in order.
func (d *Document) Append(events ...Event) {
	d.Events = append(d.Events, events...)
}

// Concat appends every event of other.
func (d *Document) Concat(other Document) {
	d.Append(other.Events...)
}

// Len returns the number of events.
func (d Document) Len() int {
	return len(d.Events)
}

// End returns the latest end time of any event.
func (d Document) End() float64 {
	end := 0.0
	for _, e := range d.Events {
		end = math.Max(end, e.End())
	}
	return end
}

// ForInstrument returns the events that call instrument n.
func (d Document) ForInstrument(n int) []Event {
	var out []Event
	for _, e := range d.Events {
		if e.Instrument == n {
			out = append(out, e)
		}
	}
	return out
}

// String renders the document, one event per line.
func (d Document) String() string {
	var sb strings.Builder
	for _, e := range d.Events {
		e.writeTo(&sb)
		sb.WriteByte('\n')
	}
	return sb.String()
}
