package pipeline

import (
	"errors"
	"fmt"

	"github.com/CarsonHerness/ctcsound-Example/internal/duration"
	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/frequency"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
	"github.com/CarsonHerness/ctcsound-Example/internal/pitch"
)

// CheckTables reports every problem a walk over the tables could run into:
// rows that don't sum to 1, reachable states without a row and pitch tokens
// the frequency table can't resolve. Problems are joined into one error.
func CheckTables(pitches *pitch.Table, freqs *frequency.Resolver) error {
	var errs []error

	if err := pitches.Validate(markov.DefaultTolerance); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, closure(pitches)...)
	for _, state := range pitches.States() {
		if _, err := freqs.Resolve(state); err != nil {
			errs = append(errs, fmt.Errorf("pitch state %q: %w", state, err))
		}
	}

	for _, name := range []string{duration.NameUniform, duration.NameShort, duration.NameLong} {
		table, err := duration.ByName(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := table.Validate(markov.DefaultTolerance); err != nil {
			errs = append(errs, err)
		}
		errs = append(errs, closure(table)...)
	}

	return errors.Join(errs...)
}

// closure finds next states with a positive probability but no row of their own
func closure[S comparable](t *markov.Table[S]) []error {
	var errs []error
	reported := make(map[S]bool)
	for _, state := range t.States() {
		row, err := t.Row(state)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, tr := range row {
			if tr.Probability <= 0 || t.Has(tr.Next) || reported[tr.Next] {
				continue
			}
			reported[tr.Next] = true
			errs = append(errs, &apperrors.MissingTransitionRowError{Table: t.Name(), State: fmt.Sprint(tr.Next)})
		}
	}
	return errs
}
