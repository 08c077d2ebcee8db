package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/CarsonHerness/ctcsound-Example/internal/audio"
	"github.com/CarsonHerness/ctcsound-Example/internal/cache"
	"github.com/CarsonHerness/ctcsound-Example/internal/composition"
	"github.com/CarsonHerness/ctcsound-Example/internal/config"
	"github.com/CarsonHerness/ctcsound-Example/internal/engine"
	"github.com/CarsonHerness/ctcsound-Example/internal/frequency"
	"github.com/CarsonHerness/ctcsound-Example/internal/markov"
	"github.com/CarsonHerness/ctcsound-Example/internal/pitch"
	"github.com/CarsonHerness/ctcsound-Example/internal/progress"
	log "github.com/sirupsen/logrus"
)

// Config holds pipeline configuration
type Config struct {
	Composition   config.Composition
	ThunderSample string
	OutputDir     string // write orchestra.orc and score.sco here, empty = don't
	UseCache      bool   // archive the documents in CacheDir
	CacheDir      string
	Render        bool   // hand the documents to csound
	CsoundPath    string
	WAVPath       string // render to this file instead of the sound card
}

// DefaultConfig returns default pipeline configuration
func DefaultConfig() Config {
	return Config{
		Composition:   config.DefaultComposition(),
		ThunderSample: "thunder16.wav",
		UseCache:      true,
		CacheDir:      ".cache/compositions",
		CsoundPath:    "csound",
	}
}

// Result contains all pipeline outputs
type Result struct {
	Composition   *composition.Composition
	Orchestra     string
	Score         string
	Seed          int64
	Events        int
	CacheKey      string
	OrchestraPath string
	ScorePath     string
	WAVPath       string
}

// SynthFactory opens a synthesis engine for one render
type SynthFactory func(binary string) (engine.Synthesizer, error)

// Orchestrator coordinates the full generation pipeline
type Orchestrator struct {
	progress *progress.Reporter
	newSynth SynthFactory
}

// NewOrchestrator creates a pipeline that renders through the csound CLI
func NewOrchestrator(out io.Writer, verbose bool) *Orchestrator {
	return NewOrchestratorWithSynth(out, verbose, func(binary string) (engine.Synthesizer, error) {
		return engine.NewCsound(binary)
	})
}

// NewOrchestratorWithSynth creates a pipeline with a custom engine factory
func NewOrchestratorWithSynth(out io.Writer, verbose bool, newSynth SynthFactory) *Orchestrator {
	return &Orchestrator{
		progress: progress.NewReporter(out, verbose),
		newSynth: newSynth,
	}
}

// Progress exposes the reporter so callers can print the final summary
func (o *Orchestrator) Progress() *progress.Reporter {
	return o.progress
}

// LoadTables reads the pitch and frequency tables, falling back to the
// built-in ones when a path is empty.
func LoadTables(pitchPath, freqPath string) (*pitch.Table, *frequency.Resolver, error) {
	pitches := pitch.DefaultTable()
	if pitchPath != "" {
		t, err := pitch.LoadTableFile(pitchPath)
		if err != nil {
			return nil, nil, err
		}
		pitches = t
	}

	freqs := frequency.Default()
	if freqPath != "" {
		r, err := frequency.LoadTableFile(freqPath)
		if err != nil {
			return nil, nil, err
		}
		freqs = r
	}
	return pitches, freqs, nil
}

// Execute runs the full pipeline
func (o *Orchestrator) Execute(ctx context.Context, cfg Config) (*Result, error) {
	comp := cfg.Composition
	rng, seed := markov.NewRand(comp.Seed)
	logger := log.WithFields(log.Fields{
		"function": "Orchestrator.Execute",
		"preset":   comp.Preset,
		"seed":     seed,
	})

	// Stage 1: Tables
	o.progress.StartStage(progress.StageTables)
	pitches, freqs, err := LoadTables(comp.PitchTable, comp.FrequencyTable)
	if err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	if err := pitches.Validate(markov.DefaultTolerance); err != nil {
		o.progress.Warning("%v", err)
	}
	o.progress.StageComplete("%d pitch states, %d frequencies", pitches.Len(), len(freqs.Labels()))

	// Stage 2: Compose
	o.progress.StartStage(progress.StageCompose)
	builder, err := composition.FromPreset(comp.Preset, pitches, freqs, composition.PresetOptions{
		ThunderSample: cfg.ThunderSample,
	})
	if err != nil {
		return nil, err
	}
	builder.Reverb = comp.Reverb
	builder.ChordStagger = comp.ChordStagger
	if cfg.Render {
		o.resolveSamples(builder)
	}

	generated, err := builder.Build(rng, comp.Duration)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	orc, err := generated.OrchestraText()
	if err != nil {
		return nil, fmt.Errorf("render orchestra: %w", err)
	}

	result := &Result{
		Composition: generated,
		Orchestra:   orc,
		Score:       generated.ScoreText(),
		Seed:        seed,
		Events:      generated.Score.Len(),
	}
	length := time.Duration(comp.Duration * float64(time.Second))
	o.progress.StageComplete("%d events over %s (preset %s, seed %d)",
		result.Events, progress.FormatDuration(length), comp.Preset, seed)
	for _, v := range builder.Voices {
		o.progress.Update("instr %d (%s): %d events", v.Instrument.Number, v.Instrument.Kind,
			len(generated.Score.ForInstrument(v.Instrument.Number)))
	}

	if cfg.OutputDir != "" {
		if err := o.writeDocuments(cfg.OutputDir, result); err != nil {
			return nil, err
		}
	}

	if cfg.UseCache {
		o.archive(cfg, seed, result)
	}

	// Stage 3: Render
	if cfg.Render {
		o.progress.StartStage(progress.StageRender)
		synth, err := o.newSynth(cfg.CsoundPath)
		if err != nil {
			return nil, fmt.Errorf("open engine: %w", err)
		}
		if err := engine.Play(ctx, synth, result.Orchestra, result.Score, engine.PlayOptions{OutputPath: cfg.WAVPath}); err != nil {
			return nil, err
		}
		result.WAVPath = cfg.WAVPath
		if cfg.WAVPath != "" {
			o.progress.StageComplete("Rendered to %s", cfg.WAVPath)
			if result.CacheKey != "" {
				o.archiveRender(cfg, result)
			}
		} else {
			o.progress.StageComplete("Playback finished")
		}
	}

	logger.WithField("events", result.Events).Debug("pipeline finished")
	return result, nil
}

func (o *Orchestrator) archiveRender(cfg Config, result *Result) {
	store, err := cache.New(cfg.CacheDir)
	if err == nil {
		err = store.SaveRender(result.CacheKey, cfg.WAVPath)
	}
	if err != nil {
		o.progress.Warning("Cache save failed: %v", err)
	}
}

// resolveSamples points sample-playing instruments at absolute paths, since
// the engine runs in its own directory. A missing sample only silences that
// instrument, so it is reported and left alone.
func (o *Orchestrator) resolveSamples(builder *composition.Builder) {
	for i, v := range builder.Voices {
		if v.Instrument.Sample == "" {
			continue
		}
		abs, _, err := audio.ResolveSample(v.Instrument.Sample)
		if err != nil {
			o.progress.Warning("instr %d sample: %v", v.Instrument.Number, err)
			continue
		}
		builder.Voices[i].Instrument.Sample = abs
	}
}

func (o *Orchestrator) writeDocuments(dir string, result *Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	result.OrchestraPath = filepath.Join(dir, "orchestra.orc")
	result.ScorePath = filepath.Join(dir, "score.sco")
	if err := os.WriteFile(result.OrchestraPath, []byte(result.Orchestra), 0644); err != nil {
		return fmt.Errorf("write orchestra: %w", err)
	}
	if err := os.WriteFile(result.ScorePath, []byte(result.Score), 0644); err != nil {
		return fmt.Errorf("write score: %w", err)
	}
	return nil
}

// archive failures are reported but never fail the run
func (o *Orchestrator) archive(cfg Config, seed int64, result *Result) {
	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		o.progress.Warning("Cache init failed: %v", err)
		return
	}
	comp := cfg.Composition
	key := cache.KeyFor(cache.Params{
		Preset:         comp.Preset,
		Seed:           seed,
		Duration:       comp.Duration,
		Reverb:         comp.Reverb,
		ChordStagger:   comp.ChordStagger,
		PitchTable:     comp.PitchTable,
		FrequencyTable: comp.FrequencyTable,
	})
	err = store.SaveOutput(key, &cache.CachedOutput{
		Orchestra: result.Orchestra,
		Score:     result.Score,
		Preset:    comp.Preset,
		Seed:      seed,
		Duration:  comp.Duration,
		Events:    result.Events,
	})
	if err != nil {
		o.progress.Warning("Cache save failed: %v", err)
		return
	}
	result.CacheKey = key
	o.progress.StageComplete("Archived as %s", key)
}
