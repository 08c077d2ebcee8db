package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutDirDefaultsPerCommand(t *testing.T) {
	assert.Equal(t, "output", composeCmd.Flags().Lookup("out-dir").DefValue)
	assert.Equal(t, "", playCmd.Flags().Lookup("out-dir").DefValue)
	assert.Equal(t, "output", composeOutDir)
	assert.Equal(t, "", playOutDir)
}

func TestComposeWritesDefaultOutputDir(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MARKOV_PRESET", "")
	t.Setenv("MARKOV_REVERB", "")

	rootCmd.SetArgs([]string{"compose", "--no-cache", "--seed", "1", "-d", "10"})
	require.NoError(t, rootCmd.Execute())

	sco, err := os.ReadFile(filepath.Join("output", "score.sco"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(sco), "i99 0 10\n"), "score starts with the reverb event")
	assert.FileExists(t, filepath.Join("output", "orchestra.orc"))
	assert.NoDirExists(t, ".cache")
}

func TestEngineHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"compile", apperrors.NewProcessError("csound", "compile", 1, "syntax error", nil), "rejected the orchestra"},
		{"render", apperrors.NewProcessError("csound", "render", 1, "no sound file", nil), "performing the score"},
		{"wrapped", fmt.Errorf("render: %w", apperrors.NewProcessError("csound", "compile", 1, "", nil)), "rejected the orchestra"},
		{"other", errors.New("boom"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := engineHint(tt.err)
			if tt.want == "" {
				assert.Empty(t, hint)
				return
			}
			assert.Contains(t, hint, tt.want)
		})
	}
}
