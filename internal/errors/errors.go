package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for expected failure modes
var (
	ErrMissingTransitionRow = errors.New("state has no transition row")
	ErrUnknownPitchLabel    = errors.New("pitch label not in frequency table")
	ErrEngineFailure        = errors.New("synthesis engine failed")
	ErrInvalidTable         = errors.New("invalid transition table")
	ErrSequenceTooLong      = errors.New("sequence exceeded maximum length")
	ErrCompositionTooShort  = errors.New("composition too short for event")
	ErrToolNotInstalled     = errors.New("required tool not installed")
	ErrUnknownPreset        = errors.New("unknown preset")
	ErrFileNotFound         = errors.New("file not found")
	ErrUnsupportedFormat    = errors.New("unsupported format")
	ErrCorruptedFile        = errors.New("file corrupted or unreadable")
	ErrFileTooLarge         = errors.New("file exceeds size limit")
)

// MissingTransitionRowError is returned when a walk reaches a state the
// table has no outgoing distribution for.
type MissingTransitionRowError struct {
	Table string
	State string
}

func (e *MissingTransitionRowError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s table: no transition row for state %q", e.Table, e.State)
	}
	return fmt.Sprintf("no transition row for state %q", e.State)
}

func (e *MissingTransitionRowError) Unwrap() error {
	return ErrMissingTransitionRow
}

// UnknownPitchLabelError names the label that failed to resolve and the
// token it came from.
type UnknownPitchLabelError struct {
	Label string
	Token string
}

func (e *UnknownPitchLabelError) Error() string {
	if e.Token != "" && e.Token != e.Label {
		return fmt.Sprintf("unknown pitch label %q (in token %q)", e.Label, e.Token)
	}
	return fmt.Sprintf("unknown pitch label %q", e.Label)
}

func (e *UnknownPitchLabelError) Unwrap() error {
	return ErrUnknownPitchLabel
}

// ProcessError represents a failure in an external process
type ProcessError struct {
	Tool     string // "csound"
	Stage    string // "compile", "render"
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s failed at %s (exit %d): %s", e.Tool, e.Stage, e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("%s failed at %s (exit %d)", e.Tool, e.Stage, e.ExitCode)
}

func (e *ProcessError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrEngineFailure}
	}
	return []error{ErrEngineFailure, e.Cause}
}

// IsCompileError reports whether the engine rejected the orchestra text
// before any audio was produced.
func (e *ProcessError) IsCompileError() bool {
	return e.Stage == "compile"
}

// NewProcessError creates a ProcessError
func NewProcessError(tool, stage string, exitCode int, stderr string, cause error) *ProcessError {
	return &ProcessError{
		Tool:     tool,
		Stage:    stage,
		ExitCode: exitCode,
		Stderr:   stderr,
		Cause:    cause,
	}
}
