package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	apperrors "github.com/CarsonHerness/ctcsound-Example/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCsound stands in for the csound binary: it rejects orchestras that
// contain BROKEN and "renders" by copying the score to the -o target.
const fakeCsound = `#!/bin/sh
case "$*" in
*--syntax-check-only*)
	if grep -q BROKEN orchestra.orc; then
		echo "error: syntax error, unexpected T_IDENT (token \"BROKEN\") line 1" >&2
		exit 1
	fi
	exit 0
	;;
esac
out=""
prev=""
for a in "$@"; do
	if [ "$prev" = "-o" ]; then out="$a"; fi
	prev="$a"
done
if [ "$out" != "dac" ]; then cp score.sco "$out"; fi
exit 0
`

func installFakeCsound(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "csound")
	require.NoError(t, os.WriteFile(path, []byte(fakeCsound), 0755))
	return path
}

func TestCsoundRenderToFile(t *testing.T) {
	cs, err := NewCsound(installFakeCsound(t))
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "render.wav")
	err = Play(context.Background(), cs, "instr 1\nendin\n", "i1 0 1 440 1\n", PlayOptions{OutputPath: out})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "i1 0 1 440 1\n", string(data))

	_, err = os.Stat(cs.workspace.Dir)
	assert.True(t, os.IsNotExist(err), "workspace must be released")
}

func TestCsoundCompileFailureKeepsDiagnostics(t *testing.T) {
	cs, err := NewCsound(installFakeCsound(t))
	require.NoError(t, err)

	err = Play(context.Background(), cs, "BROKEN\n", "i1 0 1\n", PlayOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrEngineFailure)

	var procErr *apperrors.ProcessError
	require.True(t, errors.As(err, &procErr))
	assert.True(t, procErr.IsCompileError())
	assert.Equal(t, 1, procErr.ExitCode)
	assert.Contains(t, procErr.Stderr, `unexpected T_IDENT (token "BROKEN")`)
}

func TestCsoundMissingBinary(t *testing.T) {
	cs, err := NewCsound(filepath.Join(t.TempDir(), "no-csound-here"))
	require.NoError(t, err)
	defer cs.Release()

	err = cs.Compile(context.Background(), "instr 1\nendin\n")
	assert.ErrorIs(t, err, apperrors.ErrToolNotInstalled)
	assert.ErrorIs(t, err, apperrors.ErrEngineFailure)
}

func TestCsoundRunRequiresDocuments(t *testing.T) {
	cs, err := NewCsound("csound")
	require.NoError(t, err)
	defer cs.Release()

	assert.Error(t, cs.Run(context.Background()))
}
