// Package composition combines per-instrument voices into one orchestra and
// score pair.
package composition

import (
	"fmt"

	"github.com/CarsonHerness/ctcsound-Example/internal/duration"
	"github.com/CarsonHerness/ctcsound-Example/internal/frequency"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
	"github.com/CarsonHerness/ctcsound-Example/internal/orchestra"
	"github.com/CarsonHerness/ctcsound-Example/internal/pitch"
	"github.com/CarsonHerness/ctcsound-Example/internal/score"
	log "github.com/sirupsen/logrus"
)

// VoiceKind selects how a voice turns walks into events.
type VoiceKind string

const (
	KindTonal      VoiceKind = "tonal"      // pitch and duration walks, chords expanded
	KindPercussive VoiceKind = "percussive" // duration walk only
	KindOneShot    VoiceKind = "oneshot"    // a few fixed-length events at random times
)

// Voice is one instrument part of a composition.
type Voice struct {
	Kind       VoiceKind
	Instrument orchestra.Instrument

	// Tonal and percussive voices
	StartNote     string
	StartDuration duration.Duration
	Durations     *duration.Table
	Amplitude     float64

	// One-shot voices
	Count  int
	Length float64
}

// Builder holds everything needed to generate compositions. Tables are
// shared read-only between builds.
type Builder struct {
	Settings     orchestra.Settings
	Pitches      *pitch.Table
	Frequencies  *frequency.Resolver
	Voices       []Voice
	Reverb       bool
	ReverbNumber int
	ChordStagger float64 // seconds between chord members, 0 = simultaneous
}

// Composition is a generated orchestra and score pair.
type Composition struct {
	Orchestra orchestra.Orchestra
	Score     score.Document
	Duration  float64
}

// OrchestraText renders the orchestra document.
func (c *Composition) OrchestraText() (string, error) {
	return c.Orchestra.Render()
}

// ScoreText renders the score document.
func (c *Composition) ScoreText() string {
	return c.Score.String()
}

// Build generates every voice for total seconds and concatenates their
// fragments after the optional reverb control event.
func (b *Builder) Build(rng markov.Rand, total float64) (*Composition, error) {
	if total <= 0 {
		return nil, fmt.Errorf("composition duration must be positive, got %g", total)
	}
	logger := log.WithFields(log.Fields{
		"function": "Builder.Build",
		"duration": total,
		"voices":   len(b.Voices),
	})

	comp := &Composition{
		Orchestra: orchestra.Orchestra{Settings: b.Settings},
		Duration:  total,
	}

	if b.Reverb {
		number := b.ReverbNumber
		if number == 0 {
			number = orchestra.ReverbNumber
		}
		reverb := orchestra.Reverb(number)
		comp.Orchestra.Reverb = &reverb
		comp.Score.Append(score.Event{Instrument: number, Start: 0, Duration: total})
	}

	for i, v := range b.Voices {
		fragment, err := b.voice(rng, v, total)
		if err != nil {
			return nil, fmt.Errorf("voice %d (%s instr %d): %w", i+1, v.Instrument.Kind, v.Instrument.Number, err)
		}
		logger.WithFields(log.Fields{
			"instrument": v.Instrument.Number,
			"kind":       v.Kind,
			"events":     fragment.Len(),
		}).Debug("voice generated")

		comp.Orchestra.Instruments = append(comp.Orchestra.Instruments, v.Instrument)
		comp.Score.Concat(fragment)
	}

	logger.WithField("events", comp.Score.Len()).Info("composition generated")
	return comp, nil
}

func (b *Builder) voice(rng markov.Rand, v Voice, total float64) (score.Document, error) {
	number := v.Instrument.Number

	switch v.Kind {
	case KindTonal:
		durations, err := b.durations(rng, v, total)
		if err != nil {
			return score.Document{}, err
		}
		if b.Pitches == nil || b.Frequencies == nil {
			return score.Document{}, fmt.Errorf("tonal voice needs pitch and frequency tables")
		}
		start := v.StartNote
		if start == "" {
			start = pitch.DefaultStart
		}
		notes, err := pitch.Walk(rng, b.Pitches, start, len(durations))
		if err != nil {
			return score.Document{}, err
		}
		chords, err := b.Frequencies.ResolveAll(notes)
		if err != nil {
			return score.Document{}, err
		}
		return score.Tonal(number, durations, chords, v.Amplitude, b.ChordStagger)

	case KindPercussive:
		durations, err := b.durations(rng, v, total)
		if err != nil {
			return score.Document{}, err
		}
		return score.Percussive(number, durations, v.Amplitude), nil

	case KindOneShot:
		return score.OneShot(rng, number, total, v.Count, v.Length)

	default:
		return score.Document{}, fmt.Errorf("unknown voice kind %q", v.Kind)
	}
}

func (b *Builder) durations(rng markov.Rand, v Voice, total float64) ([]duration.Duration, error) {
	table := v.Durations
	if table == nil {
		table = duration.Uniform()
	}
	start := v.StartDuration
	if start == 0 {
		start = duration.DefaultStart
	}
	return duration.Walk(rng, table, start, total)
}
