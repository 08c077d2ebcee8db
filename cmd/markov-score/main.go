package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/CarsonHerness/ctcsound-Example/internal/cache"
	"github.com/CarsonHerness/ctcsound-Example/internal/composition"
	"github.com/CarsonHerness/ctcsound-Example/internal/config"
	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/pipeline"
	"github.com/CarsonHerness/ctcsound-Example/internal/report"
	"github.com/CarsonHerness/ctcsound-Example/internal/server"
	"github.com/dustin/go-humanize"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "markov-score",
	Short: "Generate Csound compositions from Markov chains",
	Long: `markov-score walks pitch and duration transition tables to build a
Csound orchestra and score, and can hand both to csound for playback.

Pipeline: transition tables → per-voice walks → score events → csound`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		cfg.ConfigureLogging(verbose)
	},
	SilenceUsage: true,
}

var composeCmd = &cobra.Command{
	Use:   "compose",
	Short: "Write an orchestra and score without playing them",
	Long: `Generate a composition and write orchestra.orc and score.sco.

Examples:
  markov-score compose --seed 42
  markov-score compose --preset sparse --duration 30 --out-dir ./take1
  markov-score compose --pitch-table my_pop.csv --chord-stagger 0.05`,
	RunE: runCompose,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Generate a composition and perform it with csound",
	Long: `Generate a composition and run it through csound, either live to the
sound card or into a WAV file.

Examples:
  markov-score play
  markov-score play --seed 7 --wav take7.wav`,
	RunE: runPlay,
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Inspect transition tables",
}

var tablesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check pitch, duration and frequency tables",
	Long: `Check that every row sums to 1, that every reachable state has a row
and that every pitch state resolves to a frequency.

Examples:
  markov-score tables validate
  markov-score tables validate --pitch-table my_pop.csv --freq-table just.csv`,
	RunE: runTablesValidate,
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List composition presets",
	RunE:  runPresets,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API for composing and rendering in the background.

Example:
  markov-score serve --port 8080`,
	RunE: runServe,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage archived compositions",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show archived compositions",
	RunE:  runCacheInfo,
}

var cacheReportCmd = &cobra.Command{
	Use:   "report <key>",
	Short: "Generate an HTML report for an archived composition",
	Long: `Generate a self-contained HTML report with per-instrument statistics,
both documents and, when the composition was rendered to WAV, an audio player.

Example:
  markov-score cache report pop_s42_1a2b3c4d
  markov-score cache report pop_s42_1a2b3c4d --version 2 -o take2.html
  markov-score cache report pop_s42_1a2b3c4d --open`,
	Args: cobra.ExactArgs(1),
	RunE: runCacheReport,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every archived composition",
	RunE:  runCacheClear,
}

var (
	cfg *config.Config

	// Global flags
	verbose bool

	// Composition flags
	preset       string
	durationSecs float64
	seed         int64
	reverb       bool
	chordStagger float64
	pitchTable   string
	freqTable    string
	noCache      bool

	// Output flags
	composeOutDir string
	playOutDir    string
	wavPath       string

	// Serve flags
	port int

	// Report flags
	reportVersion int
	reportOutput  string
	reportOpen    bool
)

func init() {
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(tablesCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)

	tablesCmd.AddCommand(tablesValidateCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheReportCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	for _, cmd := range []*cobra.Command{composeCmd, playCmd} {
		addCompositionFlags(cmd)
	}
	composeCmd.Flags().StringVarP(&composeOutDir, "out-dir", "o", "output", "Directory for orchestra.orc and score.sco")
	playCmd.Flags().StringVarP(&playOutDir, "out-dir", "o", "", "Also write orchestra.orc and score.sco here")
	playCmd.Flags().StringVar(&wavPath, "wav", "", "Render to a WAV file instead of the sound card")

	tablesValidateCmd.Flags().StringVar(&pitchTable, "pitch-table", "", "Pitch transition CSV (default: built-in pop table)")
	tablesValidateCmd.Flags().StringVar(&freqTable, "freq-table", "", "Frequency CSV (default: equal temperament)")

	cacheReportCmd.Flags().IntVar(&reportVersion, "version", 0, "Version number (default: latest)")
	cacheReportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output HTML path (default: <cache>/<key>/report.html)")
	cacheReportCmd.Flags().BoolVar(&reportOpen, "open", false, "Open the report in the default browser")

	// Serve command flags
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default: $PORT or 8080)")
}

func addCompositionFlags(cmd *cobra.Command) {
	defaults := config.DefaultComposition()
	cmd.Flags().StringVar(&preset, "preset", defaults.Preset, "Composition preset ("+strings.Join(composition.PresetNames(), ", ")+")")
	cmd.Flags().Float64VarP(&durationSecs, "duration", "d", defaults.Duration, "Length in seconds")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = from the clock)")
	cmd.Flags().BoolVar(&reverb, "reverb", defaults.Reverb, "Add the global reverb instrument")
	cmd.Flags().Float64Var(&chordStagger, "chord-stagger", defaults.ChordStagger, "Seconds between chord members (0 = block chords)")
	cmd.Flags().StringVar(&pitchTable, "pitch-table", "", "Pitch transition CSV (default: built-in pop table)")
	cmd.Flags().StringVar(&freqTable, "freq-table", "", "Frequency CSV (default: equal temperament)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Don't archive the generated documents")
}

// pipelineConfig starts from the environment and applies any flag the user set
func pipelineConfig(cmd *cobra.Command, outDir string) (pipeline.Config, error) {
	comp := cfg.Composition
	flags := cmd.Flags()
	if flags.Changed("preset") {
		comp.Preset = preset
	}
	if flags.Changed("duration") {
		comp.Duration = durationSecs
	}
	if flags.Changed("seed") {
		comp.Seed = seed
	}
	if flags.Changed("reverb") {
		comp.Reverb = reverb
	}
	if flags.Changed("chord-stagger") {
		comp.ChordStagger = chordStagger
	}
	if flags.Changed("pitch-table") {
		comp.PitchTable = pitchTable
	}
	if flags.Changed("freq-table") {
		comp.FrequencyTable = freqTable
	}

	if comp.Duration <= 0 {
		return pipeline.Config{}, fmt.Errorf("invalid duration: %g (must be positive)", comp.Duration)
	}
	if comp.ChordStagger < 0 {
		return pipeline.Config{}, fmt.Errorf("invalid chord stagger: %g (must not be negative)", comp.ChordStagger)
	}

	return pipeline.Config{
		Composition:   comp,
		ThunderSample: cfg.ThunderSample,
		OutputDir:     outDir,
		UseCache:      !noCache,
		CacheDir:      cfg.CacheDir,
		CsoundPath:    cfg.CsoundPath,
	}, nil
}

// signalContext cancels on Ctrl-C so csound is stopped with us
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// engineHint points at the document csound rejected
func engineHint(err error) string {
	var procErr *apperrors.ProcessError
	if !errors.As(err, &procErr) {
		return ""
	}
	if procErr.IsCompileError() {
		return "csound rejected the orchestra; check the instrument templates and header settings"
	}
	return "csound failed while performing the score; check the sample paths and audio output"
}

func runCompose(cmd *cobra.Command, args []string) error {
	pcfg, err := pipelineConfig(cmd, composeOutDir)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	orch := pipeline.NewOrchestrator(os.Stdout, verbose)
	result, err := orch.Execute(ctx, pcfg)
	if err != nil {
		orch.Progress().Error(err)
		return err
	}

	orch.Progress().Done(result.OrchestraPath, result.ScorePath)
	fmt.Printf("Seed: %d (rerun with --seed %d)\n", result.Seed, result.Seed)
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	pcfg, err := pipelineConfig(cmd, playOutDir)
	if err != nil {
		return err
	}
	pcfg.Render = true
	pcfg.WAVPath = wavPath

	ctx, cancel := signalContext()
	defer cancel()

	orch := pipeline.NewOrchestrator(os.Stdout, verbose)
	result, err := orch.Execute(ctx, pcfg)
	if err != nil {
		orch.Progress().Error(err)
		if hint := engineHint(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		return err
	}

	orch.Progress().Done(result.WAVPath, result.OrchestraPath, result.ScorePath)
	fmt.Printf("Seed: %d (rerun with --seed %d)\n", result.Seed, result.Seed)
	return nil
}

func runTablesValidate(cmd *cobra.Command, args []string) error {
	pitchPath := cfg.Composition.PitchTable
	if cmd.Flags().Changed("pitch-table") {
		pitchPath = pitchTable
	}
	freqPath := cfg.Composition.FrequencyTable
	if cmd.Flags().Changed("freq-table") {
		freqPath = freqTable
	}

	pitches, freqs, err := pipeline.LoadTables(pitchPath, freqPath)
	if err != nil {
		return err
	}

	if err := pipeline.CheckTables(pitches, freqs); err != nil {
		fmt.Println("Table problems:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Printf("  - %s\n", line)
		}
		return fmt.Errorf("tables are not valid")
	}

	fmt.Printf("OK: %d pitch states, %d frequencies, 3 duration tables\n", pitches.Len(), len(freqs.Labels()))
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("Available presets:")
	for _, name := range composition.PresetNames() {
		p, err := composition.PresetByName(name)
		if err != nil {
			return err
		}
		voices := p(composition.PresetOptions{ThunderSample: cfg.ThunderSample})
		fmt.Printf("  %-8s", name)
		for i, v := range voices {
			if i > 0 {
				fmt.Print(", ")
			}
			fmt.Printf("%s (instr %d)", v.Instrument.Kind, v.Instrument.Number)
		}
		fmt.Println()
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	p := cfg.Port
	if cmd.Flags().Changed("port") {
		p = port
	}

	pcfg := pipeline.DefaultConfig()
	pcfg.Composition = cfg.Composition
	pcfg.ThunderSample = cfg.ThunderSample
	pcfg.CacheDir = cfg.CacheDir
	pcfg.CsoundPath = cfg.CsoundPath

	srv := server.New(server.Config{
		Port:       p,
		Pipeline:   pcfg,
		MaxRenders: cfg.MaxRenders,
		RateLimit:  cfg.RateLimit,
	})
	return srv.Run()
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return err
	}

	keys, err := store.Keys()
	if err != nil {
		return err
	}
	size, _, err := store.Size()
	if err != nil {
		return err
	}

	fmt.Printf("Cache: %s\n", cfg.CacheDir)
	fmt.Printf("  %d compositions, %s\n", len(keys), humanize.Bytes(uint64(size)))
	for _, key := range keys {
		latest, err := store.GetLatestOutput(key)
		if err != nil || latest == nil {
			fmt.Printf("  %s\n", key)
			continue
		}
		fmt.Printf("  %-32s v%d  %d events  %s\n", key, latest.Version, latest.Events, humanize.Time(latest.CreatedAt))
	}
	return nil
}

func runCacheReport(cmd *cobra.Command, args []string) error {
	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return err
	}

	path, err := report.NewGenerator(store).Generate(args[0], reportVersion, reportOutput)
	if err != nil {
		return err
	}
	fmt.Printf("Report saved to: %s\n", path)

	if reportOpen {
		if err := browser.OpenFile(path); err != nil {
			return fmt.Errorf("open report: %w", err)
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := cache.New(cfg.CacheDir)
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared %s\n", cfg.CacheDir)
	return nil
}
