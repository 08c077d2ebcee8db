package score

import (
	"fmt"

	"github.com/CarsonHerness/ctcsound-Example/internal/duration"
	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
)

// Tonal emits one event per frequency. Chord members share the start time of
// their duration, each shifted by stagger times its position in the chord.
// Params are frequency then amplitude.
func Tonal(instrument int, durations []duration.Duration, chords [][]float64, amp, stagger float64) (Document, error) {
	if len(chords) != len(durations) {
		return Document{}, fmt.Errorf("instrument %d: %d durations but %d notes", instrument, len(durations), len(chords))
	}

	var doc Document
	start := 0.0
	for i, d := range durations {
		for k, hz := range chords[i] {
			doc.Append(Event{
				Instrument: instrument,
				Start:      start + float64(k)*stagger,
				Duration:   float64(d),
				Params:     []float64{hz, amp},
			})
		}
		start += float64(d)
	}
	return doc, nil
}

// Percussive emits one unpitched event per duration with a fixed amplitude.
func Percussive(instrument int, durations []duration.Duration, amp float64) Document {
	var doc Document
	start := 0.0
	for _, d := range durations {
		doc.Append(Event{
			Instrument: instrument,
			Start:      start,
			Duration:   float64(d),
			Params:     []float64{amp},
		})
		start += float64(d)
	}
	return doc
}

// OneShot scatters count fixed-length events over whole seconds so that each
// one ends no later than total.
func OneShot(rng markov.Rand, instrument int, total float64, count int, length float64) (Document, error) {
	if total < length {
		return Document{}, fmt.Errorf("%w: instrument %d needs %gs, composition is %gs",
			apperrors.ErrCompositionTooShort, instrument, length, total)
	}

	latest := int(total - length)
	var doc Document
	for i := 0; i < count; i++ {
		doc.Append(Event{
			Instrument: instrument,
			Start:      float64(rng.Intn(latest + 1)),
			Duration:   length,
		})
	}
	return doc, nil
}
