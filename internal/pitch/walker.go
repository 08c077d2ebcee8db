// Package pitch walks a Markov chain over note tokens. A token is a single
// pitch label such as "C3" or a chord such as "C3|E3|G3".
package pitch

import (
	"fmt"

	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
)

// DefaultStart is the note a walk begins with unless configured.
const DefaultStart = "C3"

// Walk returns exactly n note tokens beginning with start.
func Walk(rng markov.Rand, table *Table, start string, n int) ([]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("walk pitches: need at least one note, got %d", n)
	}
	seq, err := markov.Generate(rng, table, start, markov.Count[string](n))
	if err != nil {
		return nil, fmt.Errorf("walk pitches: %w", err)
	}
	return seq, nil
}
