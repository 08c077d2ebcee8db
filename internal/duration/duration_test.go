package duration

import (
	"math/rand"
	"testing"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinTablesAreValid(t *testing.T) {
	for _, name := range []string{NameUniform, NameShort, NameLong} {
		t.Run(name, func(t *testing.T) {
			table, err := ByName(name)
			require.NoError(t, err)
			require.NoError(t, table.Validate(markov.DefaultTolerance))
			assert.Equal(t, Classes, table.States())
			for _, d := range Classes {
				row, err := table.Row(d)
				require.NoError(t, err)
				assert.InDelta(t, 1.0, row.Sum(), markov.DefaultTolerance)
			}
		})
	}
}

func TestByNameUnknown(t *testing.T) {
	_, err := ByName("glacial")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTable)
}

func TestWalkReachesTotal(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		seq, err := Walk(rand.New(rand.NewSource(seed)), LongFavoring(), DefaultStart, 60)
		require.NoError(t, err)
		require.NotEmpty(t, seq)
		assert.Equal(t, DefaultStart, seq[0])

		total := Sum(seq)
		assert.GreaterOrEqual(t, total, 60.0)
		assert.Less(t, total-float64(seq[len(seq)-1]), 60.0)
		for _, d := range seq {
			assert.Contains(t, Classes, d)
		}
	}
}

func TestWalkSelfLoop(t *testing.T) {
	table := markov.NewBuilder[Duration]("loop").
		Weights(Eighth, []Duration{Eighth}, []float64{1}).
		Build()
	seq, err := Walk(rand.New(rand.NewSource(1)), table, Eighth, 2.0)
	require.NoError(t, err)
	assert.Equal(t, []Duration{0.5, 0.5, 0.5, 0.5}, seq)
}

func TestWalkUnknownStart(t *testing.T) {
	_, err := Walk(rand.New(rand.NewSource(1)), Uniform(), Duration(0.4), 10)
	assert.ErrorIs(t, err, apperrors.ErrMissingTransitionRow)
}
