// Package engine hands orchestra and score documents to an external
// synthesis engine.
package engine

import "context"

// Synthesizer is the external engine a composition is rendered by.
type Synthesizer interface {
	// Compile accepts the orchestra document.
	Compile(ctx context.Context, orchestra string) error
	// LoadScore accepts the score document.
	LoadScore(score string) error
	// SetOutputFile sends the rendered audio to path instead of the sound card.
	SetOutputFile(path string) error
	// Run performs the score and blocks until it finishes.
	Run(ctx context.Context) error
	// Release frees engine resources.
	Release() error
}

// PlayOptions controls a single performance
type PlayOptions struct {
	OutputPath string // optional audio file to write
}

// Play compiles orc, loads sco and runs the engine, always releasing it
// afterwards. Engine errors are returned as-is.
func Play(ctx context.Context, synth Synthesizer, orc, sco string, opts PlayOptions) (err error) {
	defer func() {
		if rerr := synth.Release(); err == nil {
			err = rerr
		}
	}()

	if opts.OutputPath != "" {
		if err := synth.SetOutputFile(opts.OutputPath); err != nil {
			return err
		}
	}
	if err := synth.Compile(ctx, orc); err != nil {
		return err
	}
	if err := synth.LoadScore(sco); err != nil {
		return err
	}
	return synth.Run(ctx)
}
