// Package audio checks the sound files instruments read from disk.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
)

const (
	MaxSampleSize = 100 * 1024 * 1024 // 100MB
)

// Format represents a sound file format csound can read
type Format string

const (
	FormatWAV     Format = "wav"
	FormatAIFF    Format = "aiff"
	FormatUnknown Format = "unknown"
)

// ValidateSample checks that path is a readable WAV or AIFF file
func ValidateSample(path string) (Format, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return FormatUnknown, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, path)
	}
	if err != nil {
		return FormatUnknown, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return FormatUnknown, fmt.Errorf("%w: %s is a directory", apperrors.ErrUnsupportedFormat, path)
	}

	if info.Size() > MaxSampleSize {
		return FormatUnknown, fmt.Errorf("%w: maximum size is 100MB", apperrors.ErrFileTooLarge)
	}

	format, err := detectFormat(path)
	if err != nil {
		return FormatUnknown, err
	}
	if format == FormatUnknown {
		return FormatUnknown, fmt.Errorf("%w: %s is not a WAV or AIFF file", apperrors.ErrUnsupportedFormat, path)
	}
	return format, nil
}

// ResolveSample validates path and returns it in absolute form, so the
// engine finds it whatever directory it runs in.
func ResolveSample(path string) (string, Format, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", FormatUnknown, fmt.Errorf("sample path: %w", err)
	}
	format, err := ValidateSample(abs)
	if err != nil {
		return "", FormatUnknown, err
	}
	return abs, format, nil
}

// detectFormat checks file magic bytes to determine the format
func detectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("%w: %v", apperrors.ErrCorruptedFile, err)
	}
	defer f.Close()

	// RIFF....WAVE and FORM....AIFF/AIFC both fit in 12 bytes
	header := make([]byte, 12)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return FormatUnknown, fmt.Errorf("%w: could not read file header", apperrors.ErrCorruptedFile)
	}
	if n < 4 {
		return FormatUnknown, fmt.Errorf("%w: could not read file header", apperrors.ErrCorruptedFile)
	}

	if n == 12 {
		switch {
		case string(header[:4]) == "RIFF" && string(header[8:12]) == "WAVE":
			return FormatWAV, nil
		case string(header[:4]) == "FORM" && (string(header[8:12]) == "AIFF" || string(header[8:12]) == "AIFC"):
			return FormatAIFF, nil
		}
	}

	// Fallback: check extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return FormatWAV, nil
	case ".aif", ".aiff":
		return FormatAIFF, nil
	}

	return FormatUnknown, nil
}
