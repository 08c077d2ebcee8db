package composition

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/CarsonHerness/ctcsound-Example/internal/duration"
	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/frequency"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
	"github.com/CarsonHerness/ctcsound-Example/internal/orchestra"
	"github.com/CarsonHerness/ctcsound-Example/internal/pitch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func popBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := FromPreset("pop", pitch.DefaultTable(), frequency.Default(), PresetOptions{})
	require.NoError(t, err)
	return b
}

func TestBuildPop(t *testing.T) {
	comp, err := popBuilder(t).Build(rand.New(rand.NewSource(11)), 60)
	require.NoError(t, err)

	events := comp.Score.Events
	require.NotEmpty(t, events)
	assert.Equal(t, "i99 0 60", events[0].String(), "reverb control event comes first")

	// fragments are concatenated in voice order, not interleaved by time
	last := 0
	for _, e := range events[1:] {
		assert.GreaterOrEqual(t, e.Instrument, last)
		last = e.Instrument
	}

	assert.Len(t, comp.Score.ForInstrument(orchestra.ThunderNumber), 4)
	for _, n := range []int{orchestra.ToneNumber, orchestra.DrumNumber, orchestra.PianoNumber} {
		part := comp.Score.ForInstrument(n)
		require.NotEmpty(t, part, "instrument %d", n)
		assert.Equal(t, 0.0, part[0].Start)
		assert.Less(t, part[len(part)-1].Start, 60.0)
	}
	assert.LessOrEqual(t, comp.Score.End(), 61.0)

	orc, err := comp.OrchestraText()
	require.NoError(t, err)
	for _, want := range []string{"instr 1\n", "instr 2\n", "instr 3\n", "instr 4\n", "instr 99\n"} {
		assert.Contains(t, orc, want)
	}
}

func TestBuildDeterministic(t *testing.T) {
	a, err := popBuilder(t).Build(rand.New(rand.NewSource(5)), 30)
	require.NoError(t, err)
	b, err := popBuilder(t).Build(rand.New(rand.NewSource(5)), 30)
	require.NoError(t, err)
	assert.Equal(t, a.ScoreText(), b.ScoreText())
}

func TestBuildWithoutReverb(t *testing.T) {
	b := popBuilder(t)
	b.Reverb = false
	comp, err := b.Build(rand.New(rand.NewSource(1)), 20)
	require.NoError(t, err)

	assert.Empty(t, comp.Score.ForInstrument(orchestra.ReverbNumber))
	assert.Nil(t, comp.Orchestra.Reverb)
	orc, err := comp.OrchestraText()
	require.NoError(t, err)
	assert.NotContains(t, orc, "instr 99")
}

func TestBuildChordStagger(t *testing.T) {
	chordOnly := markov.NewBuilder[string]("chords").
		Weights("C3|E3|G3", []string{"C3|E3|G3"}, []float64{1}).
		Build()
	b := &Builder{
		Settings:     orchestra.DefaultSettings(),
		Pitches:      chordOnly,
		Frequencies:  frequency.Default(),
		ChordStagger: 0.02,
		Voices: []Voice{{
			Kind:       KindTonal,
			Instrument: orchestra.Tone(1),
			StartNote:  "C3|E3|G3",
			Durations: markov.NewBuilder[duration.Duration]("loop").
				Weights(duration.Quarter, []duration.Duration{duration.Quarter}, []float64{1}).
				Build(),
			StartDuration: duration.Quarter,
			Amplitude:     1,
		}},
	}

	comp, err := b.Build(rand.New(rand.NewSource(1)), 2)
	require.NoError(t, err)
	assert.Equal(t, "i1 0 1 130.81 1\n"+
		"i1 0.02 1 164.81 1\n"+
		"i1 0.04 1 196 1\n"+
		"i1 1 1 130.81 1\n"+
		"i1 1.02 1 164.81 1\n"+
		"i1 1.04 1 196 1\n", comp.ScoreText())
}

func TestBuildUnknownStartNote(t *testing.T) {
	b := popBuilder(t)
	b.Voices[0].StartNote = "H2"
	_, err := b.Build(rand.New(rand.NewSource(1)), 10)
	assert.ErrorIs(t, err, apperrors.ErrMissingTransitionRow)
}

func TestBuildUnknownFrequency(t *testing.T) {
	b := popBuilder(t)
	b.Frequencies = frequency.NewResolver(map[string]float64{"A3": 220})
	_, err := b.Build(rand.New(rand.NewSource(1)), 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnknownPitchLabel)
	assert.True(t, strings.Contains(err.Error(), "voice 1"))
}

func TestBuildTooShortForThunder(t *testing.T) {
	_, err := popBuilder(t).Build(rand.New(rand.NewSource(1)), 3)
	assert.ErrorIs(t, err, apperrors.ErrCompositionTooShort)
}

func TestBuildRejectsNonPositiveDuration(t *testing.T) {
	_, err := popBuilder(t).Build(rand.New(rand.NewSource(1)), 0)
	assert.Error(t, err)
}

func TestPresetByName(t *testing.T) {
	assert.Equal(t, []string{"pop", "sparse"}, PresetNames())

	_, err := PresetByName("POP")
	assert.NoError(t, err)

	_, err = PresetByName("polka")
	assert.ErrorIs(t, err, apperrors.ErrUnknownPreset)
}
