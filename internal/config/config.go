package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the application configuration
type Config struct {
	// External engine
	CsoundPath    string // csound binary
	ThunderSample string // sound file played by the thunder instrument

	// Storage
	CacheDir string // archive of generated documents

	// Service
	Port       int
	MaxRenders int     // concurrent render jobs, 0 = one per CPU
	RateLimit  float64 // generation requests per second, 0 = unlimited

	// Logging
	LogLevel string

	// Composition defaults
	Composition Composition
}

// Composition holds the defaults for a single generation run
type Composition struct {
	Preset         string
	Duration       float64 // seconds
	Seed           int64   // 0 = seed from the clock
	Reverb         bool
	ChordStagger   float64
	PitchTable     string // CSV path, empty = built-in table
	FrequencyTable string // CSV path, empty = equal temperament
}

// DefaultComposition returns the default generation settings
func DefaultComposition() Composition {
	return Composition{
		Preset:       "pop",
		Duration:     60,
		Reverb:       true,
		ChordStagger: 0,
	}
}

// Load reads configuration from the environment, after loading an optional
// .env file from the working directory.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("could not read .env file")
	}

	comp := DefaultComposition()
	comp.Preset = getEnv("MARKOV_PRESET", comp.Preset)
	comp.Duration = getEnvFloat("MARKOV_DURATION", comp.Duration)
	comp.Seed = int64(getEnvInt("MARKOV_SEED", 0))
	comp.Reverb = getEnvBool("MARKOV_REVERB", comp.Reverb)
	comp.ChordStagger = getEnvFloat("MARKOV_CHORD_STAGGER", comp.ChordStagger)
	comp.PitchTable = getEnv("MARKOV_PITCH_TABLE", "")
	comp.FrequencyTable = getEnv("MARKOV_FREQ_TABLE", "")

	return &Config{
		CsoundPath:    getEnv("CSOUND_PATH", "csound"),
		ThunderSample: getEnv("THUNDER_SAMPLE", "thunder16.wav"),
		CacheDir:      getEnv("MARKOV_CACHE_DIR", ".cache/compositions"),
		Port:          getEnvInt("PORT", 8080),
		MaxRenders:    getEnvInt("MARKOV_MAX_RENDERS", 0),
		RateLimit:     getEnvFloat("MARKOV_RATE_LIMIT", 0),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Composition:   comp,
	}
}

// ConfigureLogging applies the configured log level to the global logger
func (c *Config) ConfigureLogging(verbose bool) {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	if verbose && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultValue
}
