package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/CarsonHerness/ctcsound-Example/internal/exec"
	"github.com/CarsonHerness/ctcsound-Example/internal/workspace"
	log "github.com/sirupsen/logrus"
)

const (
	toolName = "csound"
	dac      = "dac"
)

// Csound drives the csound command line program. Documents are written into
// a private workspace that Release removes.
type Csound struct {
	runner    *exec.Runner
	workspace *workspace.Workspace
	output    string
	orcPath   string
	scoPath   string
}

// NewCsound prepares a Csound engine using binary (default "csound").
func NewCsound(binary string) (*Csound, error) {
	if binary == "" {
		binary = toolName
	}
	ws, err := workspace.Create()
	if err != nil {
		return nil, err
	}
	return &Csound{
		runner:    exec.NewRunner(binary, ws.Dir),
		workspace: ws,
		output:    dac,
	}, nil
}

// Compile writes the orchestra and asks csound to syntax check it.
func (c *Csound) Compile(ctx context.Context, orchestra string) error {
	if _, err := c.runner.LookPath(); err != nil {
		return apperrors.NewProcessError(toolName, "compile", -1, "",
			fmt.Errorf("%w: %s: %v", apperrors.ErrToolNotInstalled, c.runner.Binary, err))
	}

	path, err := c.workspace.WriteFile(c.workspace.Orchestra(), orchestra)
	if err != nil {
		return err
	}

	result, err := c.runner.Run(ctx, "--syntax-check-only", "--orc", path)
	if err != nil {
		return processError("compile", result, err)
	}
	c.orcPath = path
	return nil
}

// LoadScore writes the score next to the orchestra.
func (c *Csound) LoadScore(score string) error {
	path, err := c.workspace.WriteFile(c.workspace.Score(), score)
	if err != nil {
		return err
	}
	c.scoPath = path
	return nil
}

// SetOutputFile renders to a WAV file at path.
func (c *Csound) SetOutputFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("output path: %w", err)
	}
	c.output = abs
	return nil
}

// Run performs the loaded score.
func (c *Csound) Run(ctx context.Context) error {
	if c.orcPath == "" || c.scoPath == "" {
		return errors.New("csound: compile and load a score before running")
	}

	// File renders land in the workspace first so a failed run never
	// leaves a partial file at the destination.
	target := c.output
	if c.output != dac {
		target = c.workspace.Render()
	}
	args := []string{"-d", "-o", target}
	if c.output != dac {
		args = append(args, "-W")
	}
	args = append(args, c.orcPath, c.scoPath)

	logger := log.WithFields(log.Fields{
		"function": "Csound.Run",
		"output":   c.output,
	})
	logger.Debug("starting render")

	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return processError("render", result, err)
	}
	if c.output != dac {
		if err := c.workspace.CopyFile(target, c.output); err != nil {
			return fmt.Errorf("save render: %w", err)
		}
	}
	logger.WithField("elapsed", result.Duration).Info("render complete")
	return nil
}

// Release removes the workspace.
func (c *Csound) Release() error {
	return c.workspace.Cleanup()
}

func processError(stage string, result *exec.Result, err error) error {
	if result == nil {
		return apperrors.NewProcessError(toolName, stage, -1, "", err)
	}
	return apperrors.NewProcessError(toolName, stage, result.ExitCode, result.Stderr, err)
}
