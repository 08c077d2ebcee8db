package pitch

import (
	"math/rand"
	"strings"
	"testing"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate(markov.DefaultTolerance))
	assert.Equal(t, 12, table.Len())
	assert.True(t, table.Has("C3"))
	assert.True(t, table.Has("A3"))
	assert.True(t, table.Has("C3|E3|G3"))
}

func TestWalkLength(t *testing.T) {
	table := DefaultTable()
	for _, n := range []int{1, 2, 17, 200} {
		seq, err := Walk(rand.New(rand.NewSource(int64(n))), table, "A3", n)
		require.NoError(t, err)
		assert.Len(t, seq, n)
		assert.Equal(t, "A3", seq[0])
		for _, tok := range seq {
			assert.True(t, table.Has(tok), "token %q must be a table state", tok)
		}
	}
}

func TestWalkRejectsEmpty(t *testing.T) {
	_, err := Walk(rand.New(rand.NewSource(1)), DefaultTable(), "C3", 0)
	assert.Error(t, err)
}

func TestWalkUnknownStart(t *testing.T) {
	_, err := Walk(rand.New(rand.NewSource(1)), DefaultTable(), "H9", 4)
	assert.ErrorIs(t, err, apperrors.ErrMissingTransitionRow)
}

func TestWalkDeterministic(t *testing.T) {
	a, err := Walk(rand.New(rand.NewSource(7)), DefaultTable(), "C3", 50)
	require.NoError(t, err)
	b, err := Walk(rand.New(rand.NewSource(7)), DefaultTable(), "C3", 50)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLoadTable(t *testing.T) {
	t.Run("pandas style header", func(t *testing.T) {
		src := "Unnamed: 0,C3,G3\nC3,0.25,0.75\nG3, 1 ,0\n"
		table, err := LoadTable(strings.NewReader(src))
		require.NoError(t, err)
		require.NoError(t, table.Validate(markov.DefaultTolerance))

		row, err := table.Row("G3")
		require.NoError(t, err)
		assert.Equal(t, "C3", row[0].Next)
		assert.Equal(t, 1.0, row[0].Probability)
	})

	t.Run("ragged row", func(t *testing.T) {
		_, err := LoadTable(strings.NewReader(",C3,G3\nC3,1\n"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTable)
	})

	t.Run("bad number", func(t *testing.T) {
		_, err := LoadTable(strings.NewReader(",C3\nC3,one\n"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTable)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := LoadTable(strings.NewReader(""))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTable)
	})
}
