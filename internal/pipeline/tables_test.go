package pipeline

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/frequency"
	"github.com/CarsonHerness/ctcsound-Example/internal/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTablesBuiltIn(t *testing.T) {
	assert.NoError(t, CheckTables(pitch.DefaultTable(), frequency.Default()))
}

func TestCheckTablesReportsEveryProblem(t *testing.T) {
	pitches, err := pitch.LoadTable(strings.NewReader(",C3,G3,D3\nC3,0.5,0.5,0\nG3,0.2,0.2,0.2\n"))
	require.NoError(t, err)
	freqs := frequency.NewResolver(map[string]float64{"C3": 130.81})

	err = CheckTables(pitches, freqs)
	require.Error(t, err)

	assert.ErrorIs(t, err, apperrors.ErrInvalidTable)        // G3 sums to 0.6
	assert.ErrorIs(t, err, apperrors.ErrMissingTransitionRow) // D3 reachable from G3
	assert.ErrorIs(t, err, apperrors.ErrUnknownPitchLabel)    // G3 has no frequency

	var missing *apperrors.MissingTransitionRowError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "D3", missing.State)
}
