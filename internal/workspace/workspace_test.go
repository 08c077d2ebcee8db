package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceLifecycle(t *testing.T) {
	ws, err := Create()
	require.NoError(t, err)

	path, err := ws.WriteFile(ws.Score(), "i1 0 1 440 1\n")
	require.NoError(t, err)
	assert.Equal(t, ws.Score(), path)

	dst := filepath.Join(t.TempDir(), "copy.sco")
	require.NoError(t, ws.CopyFile(path, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "i1 0 1 440 1\n", string(data))

	require.NoError(t, ws.Cleanup())
	_, err = os.Stat(ws.Dir)
	assert.True(t, os.IsNotExist(err))
}
