// Package duration walks a Markov chain over note-length classes.
package duration

import (
	"fmt"
	"strings"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
)

// Duration is a note length in beats.
type Duration float64

// The fixed set of duration classes.
const (
	ThirtySecond  Duration = 0.125
	Sixteenth     Duration = 0.25
	Triplet       Duration = 0.333
	Eighth        Duration = 0.5
	DoubleTriplet Duration = 0.666
	Dotted        Duration = 0.75
	Quarter       Duration = 1
)

// DefaultStart is the duration every walk begins with unless configured.
const DefaultStart = Eighth

// Classes lists the duration classes in table column order.
var Classes = []Duration{ThirtySecond, Sixteenth, Triplet, Eighth, DoubleTriplet, Dotted, Quarter}

// Table is a transition table over duration classes.
type Table = markov.Table[Duration]

// Walk samples durations starting at start until their sum first reaches
// total. The last duration may run past total.
func Walk(rng markov.Rand, table *Table, start Duration, total float64) ([]Duration, error) {
	seq, err := markov.Generate(rng, table, start, markov.SumAtLeast[Duration](total))
	if err != nil {
		return nil, fmt.Errorf("walk durations: %w", err)
	}
	return seq, nil
}

// Sum returns the total length of seq.
func Sum(seq []Duration) float64 {
	total := 0.0
	for _, d := range seq {
		total += float64(d)
	}
	return total
}

// Table names accepted by ByName.
const (
	NameUniform = "uniform"
	NameShort   = "short"
	NameLong    = "long"
)

// ByName returns one of the built-in tables.
func ByName(name string) (*Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameUniform, "":
		return Uniform(), nil
	case NameShort:
		return ShortFavoring(), nil
	case NameLong:
		return LongFavoring(), nil
	default:
		return nil, fmt.Errorf("%w: unknown duration table %q (uniform, short, long)", apperrors.ErrInvalidTable, name)
	}
}
