// Package markov implements first-order Markov chains driven by fixed,
// hand-authored transition tables.
package markov

import (
	"fmt"
	"math"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
)

// DefaultTolerance is the allowed deviation of a row sum from 1.
const DefaultTolerance = 1e-6

// Transition is one weighted edge out of a state.
type Transition[S comparable] struct {
	Next        S
	Probability float64
}

// Row is an ordered list of transitions out of a single state.
type Row[S comparable] []Transition[S]

// Sum returns the total probability mass of the row.
func (r Row[S]) Sum() float64 {
	total := 0.0
	for _, t := range r {
		total += t.Probability
	}
	return total
}

// Table maps a current state to the distribution over next states.
// A Table is immutable once built; accessors hand out copies.
type Table[S comparable] struct {
	name  string
	order []S
	rows  map[S]Row[S]
}

// Builder accumulates rows for a Table in insertion order.
type Builder[S comparable] struct {
	name  string
	order []S
	rows  map[S]Row[S]
}

// NewBuilder starts a table with the given name (used in error messages).
func NewBuilder[S comparable](name string) *Builder[S] {
	return &Builder[S]{
		name: name,
		rows: make(map[S]Row[S]),
	}
}

// Row sets the outgoing transitions for state. Setting the same state twice
// replaces the earlier row but keeps its original position.
func (b *Builder[S]) Row(state S, transitions ...Transition[S]) *Builder[S] {
	if _, ok := b.rows[state]; !ok {
		b.order = append(b.order, state)
	}
	row := make(Row[S], len(transitions))
	copy(row, transitions)
	b.rows[state] = row
	return b
}

// Weights sets a row from parallel slices of next states and probabilities.
func (b *Builder[S]) Weights(state S, next []S, probs []float64) *Builder[S] {
	n := len(next)
	if len(probs) < n {
		n = len(probs)
	}
	row := make([]Transition[S], 0, n)
	for i := 0; i < n; i++ {
		row = append(row, Transition[S]{Next: next[i], Probability: probs[i]})
	}
	return b.Row(state, row...)
}

// Build freezes the accumulated rows into a Table.
func (b *Builder[S]) Build() *Table[S] {
	t := &Table[S]{
		name:  b.name,
		order: make([]S, len(b.order)),
		rows:  make(map[S]Row[S], len(b.rows)),
	}
	copy(t.order, b.order)
	for state, row := range b.rows {
		cp := make(Row[S], len(row))
		copy(cp, row)
		t.rows[state] = cp
	}
	return t
}

// Name returns the table name.
func (t *Table[S]) Name() string {
	return t.name
}

// States returns the states that have a row, in insertion order.
func (t *Table[S]) States() []S {
	out := make([]S, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of rows.
func (t *Table[S]) Len() int {
	return len(t.order)
}

// Has reports whether state has a row.
func (t *Table[S]) Has(state S) bool {
	_, ok := t.rows[state]
	return ok
}

// Row returns a copy of the outgoing transitions of state.
func (t *Table[S]) Row(state S) (Row[S], error) {
	row, ok := t.rows[state]
	if !ok {
		return nil, &apperrors.MissingTransitionRowError{
			Table: t.name,
			State: fmt.Sprint(state),
		}
	}
	cp := make(Row[S], len(row))
	copy(cp, row)
	return cp, nil
}

// Validate checks that every row is non-empty, carries no negative
// probabilities and sums to 1 within tol.
func (t *Table[S]) Validate(tol float64) error {
	if len(t.order) == 0 {
		return fmt.Errorf("%w: %s table has no rows", apperrors.ErrInvalidTable, t.name)
	}
	for _, state := range t.order {
		row := t.rows[state]
		if len(row) == 0 {
			return fmt.Errorf("%w: %s table row %v is empty", apperrors.ErrInvalidTable, t.name, state)
		}
		for _, tr := range row {
			if tr.Probability < 0 || math.IsNaN(tr.Probability) {
				return fmt.Errorf("%w: %s table row %v has invalid probability %v for %v",
					apperrors.ErrInvalidTable, t.name, state, tr.Probability, tr.Next)
			}
		}
		if sum := row.Sum(); math.Abs(sum-1) > tol {
			return fmt.Errorf("%w: %s table row %v sums to %.6f", apperrors.ErrInvalidTable, t.name, state, sum)
		}
	}
	return nil
}
