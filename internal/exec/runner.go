package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

// Result holds command execution output
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes an external binary with context support
type Runner struct {
	Binary string
	Dir    string
}

// NewRunner creates a runner for binary, executed from dir
func NewRunner(binary, dir string) *Runner {
	return &Runner{
		Binary: binary,
		Dir:    dir,
	}
}

// Run executes the binary with arguments. The returned Result is non-nil
// whenever the process started, including on a non-zero exit.
func (r *Runner) Run(ctx context.Context, args ...string) (*Result, error) {
	return r.execute(ctx, r.Binary, args...)
}

// LookPath reports whether the binary can be found
func (r *Runner) LookPath() (string, error) {
	return exec.LookPath(r.Binary)
}

// execute runs a command and captures output
func (r *Runner) execute(ctx context.Context, name string, args ...string) (*Result, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = r.Dir

	err := cmd.Run()

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("command %s failed: %w", name, err)
	}

	return result, nil
}
