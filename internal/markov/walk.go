package markov

import (
	"fmt"
	"math/rand"
	"time"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
)

// MaxSequenceLength bounds Generate so a stop condition that can never be
// met fails instead of looping forever.
const MaxSequenceLength = 1 << 16

// Rand is the random source a walk draws from. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a seeded source. A zero seed is replaced with the clock.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// StopFunc reports whether a sequence is complete.
type StopFunc[S comparable] func(seq []S) bool

// Count stops once the sequence holds n states. n <= 1 keeps only the start.
func Count[S comparable](n int) StopFunc[S] {
	return func(seq []S) bool {
		return len(seq) >= n
	}
}

// SumAtLeast stops at the first state whose running sum reaches target.
// The returned func keeps a running total between calls and must not be
// shared by concurrent walks.
func SumAtLeast[S interface {
	comparable
	~float64
}](target float64) StopFunc[S] {
	sum := 0.0
	seen := 0
	return func(seq []S) bool {
		if len(seq) <= seen {
			sum, seen = 0, 0
		}
		for _, v := range seq[seen:] {
			sum += float64(v)
		}
		seen = len(seq)
		return sum >= target
	}
}

// SampleNext draws the successor of current from its row in table.
func SampleNext[S comparable](rng Rand, table *Table[S], current S) (S, error) {
	row, ok := table.rows[current]
	if !ok || len(row) == 0 {
		var zero S
		return zero, &apperrors.MissingTransitionRowError{
			Table: table.name,
			State: fmt.Sprint(current),
		}
	}

	r := rng.Float64()
	cum := 0.0
	for _, t := range row {
		cum += t.Probability
		if r < cum {
			return t.Next, nil
		}
	}
	// rounding left r above the final cumulative sum
	return row[len(row)-1].Next, nil
}

// Generate walks table from start until stop is satisfied. The start state
// is always the first element.
func Generate[S comparable](rng Rand, table *Table[S], start S, stop StopFunc[S]) ([]S, error) {
	seq := []S{start}
	current := start
	for !stop(seq) {
		if len(seq) >= MaxSequenceLength {
			return seq, fmt.Errorf("%w: %s table after %d states", apperrors.ErrSequenceTooLong, table.name, len(seq))
		}
		next, err := SampleNext(rng, table, current)
		if err != nil {
			return seq, err
		}
		seq = append(seq, next)
		current = next
	}
	return seq, nil
}
