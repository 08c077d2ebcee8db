package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"CSOUND_PATH", "PORT", "LOG_LEVEL", "MARKOV_PRESET", "MARKOV_DURATION",
		"MARKOV_SEED", "MARKOV_REVERB", "MARKOV_CHORD_STAGGER", "MARKOV_CACHE_DIR",
		"MARKOV_PITCH_TABLE", "MARKOV_FREQ_TABLE", "MARKOV_MAX_RENDERS", "MARKOV_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "csound", cfg.CsoundPath)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, ".cache/compositions", cfg.CacheDir)
	assert.Zero(t, cfg.MaxRenders)
	assert.Equal(t, DefaultComposition(), cfg.Composition)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CSOUND_PATH", "/opt/csound/bin/csound")
	t.Setenv("PORT", "9090")
	t.Setenv("MARKOV_MAX_RENDERS", "2")
	t.Setenv("MARKOV_RATE_LIMIT", "0.5")
	t.Setenv("MARKOV_PRESET", "sparse")
	t.Setenv("MARKOV_DURATION", "12.5")
	t.Setenv("MARKOV_SEED", "42")
	t.Setenv("MARKOV_REVERB", "off")
	t.Setenv("MARKOV_CHORD_STAGGER", "0.01")

	cfg := Load()
	assert.Equal(t, "/opt/csound/bin/csound", cfg.CsoundPath)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2, cfg.MaxRenders)
	assert.Equal(t, 0.5, cfg.RateLimit)
	assert.Equal(t, "sparse", cfg.Composition.Preset)
	assert.Equal(t, 12.5, cfg.Composition.Duration)
	assert.Equal(t, int64(42), cfg.Composition.Seed)
	assert.False(t, cfg.Composition.Reverb)
	assert.Equal(t, 0.01, cfg.Composition.ChordStagger)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "eighty")
	t.Setenv("MARKOV_DURATION", "long")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 60.0, cfg.Composition.Duration)
}

func TestConfigureLogging(t *testing.T) {
	defer log.SetLevel(log.GetLevel())

	cfg := &Config{LogLevel: "warn"}
	cfg.ConfigureLogging(false)
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	cfg.ConfigureLogging(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	cfg.LogLevel = "chatty"
	cfg.ConfigureLogging(false)
	assert.Equal(t, log.InfoLevel, log.GetLevel())
}
