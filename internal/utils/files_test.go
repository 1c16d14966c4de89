package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mu-plugins", "vite-dev-server.php")

	require.NoError(t, WriteFileAtomic(path, []byte("<?php\n"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<?php\n", string(data))

	require.NoError(t, WriteFileAtomic(path, []byte("<?php // v2\n"), 0o644))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<?php // v2\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestRemoveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.php")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	removed, err := RemoveFile(path)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = RemoveFile(path)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestArtifactPath(t *testing.T) {
	p, err := ArtifactPath("wp-content/mu-plugins", "vite-dev-server.php")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(p))
	assert.Equal(t, "vite-dev-server.php", filepath.Base(p))
}
