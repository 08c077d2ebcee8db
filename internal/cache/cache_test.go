package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	p := Params{Preset: "pop", Seed: 42, Duration: 60, Reverb: true}
	key := KeyFor(p)
	assert.Regexp(t, `^pop_s42_[0-9a-f]{8}$`, key)
	assert.Equal(t, key, KeyFor(p))

	p.Duration = 30
	assert.NotEqual(t, key, KeyFor(p))

	assert.Regexp(t, `^my_set_s1_`, KeyFor(Params{Preset: "My Set", Seed: 1}))
	assert.Regexp(t, `^custom_s0_`, KeyFor(Params{}))
}

func TestSaveAndHistory(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "compositions"))
	require.NoError(t, err)

	key := KeyFor(Params{Preset: "pop", Seed: 7, Duration: 10})
	latest, err := c.GetLatestOutput(key)
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := &CachedOutput{Orchestra: "instr 1\nendin\n", Score: "i1 0 1 440 1\n", Preset: "pop", Seed: 7, Events: 1}
	require.NoError(t, c.SaveOutput(key, first))
	second := &CachedOutput{Orchestra: "instr 2\nendin\n", Score: "i2 0 1 0.05\n", Preset: "pop", Seed: 7, Events: 1}
	require.NoError(t, c.SaveOutput(key, second))

	history, err := c.GetOutputHistory(key)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Version)
	assert.Equal(t, 2, history[1].Version)

	latest, err = c.GetLatestOutput(key)
	require.NoError(t, err)
	assert.Equal(t, "i2 0 1 0.05\n", latest.Score)

	sco, err := os.ReadFile(filepath.Join(c.Dir(key), "latest.sco"))
	require.NoError(t, err)
	assert.Equal(t, "i2 0 1 0.05\n", string(sco))
	orc, err := os.ReadFile(filepath.Join(c.Dir(key), "output_v001.orc"))
	require.NoError(t, err)
	assert.Equal(t, "instr 1\nendin\n", string(orc))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	size, count, err := c.Size()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Greater(t, size, int64(0))

	require.NoError(t, c.Clear())
	size, count, err = c.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.Zero(t, count)
}

func TestSaveRender(t *testing.T) {
	c, err := New(t.TempDir())
	require.NoError(t, err)

	wav := filepath.Join(t.TempDir(), "take.wav")
	require.NoError(t, os.WriteFile(wav, []byte("RIFF0000WAVE"), 0644))

	require.NoError(t, c.SaveRender("pop_s1_abcdef12", wav))
	data, err := os.ReadFile(filepath.Join(c.Dir("pop_s1_abcdef12"), "render.wav"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF0000WAVE", string(data))

	assert.Error(t, c.SaveRender("pop_s1_abcdef12", filepath.Join(t.TempDir(), "missing.wav")))
}
