package typeconverter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf))

	out := buf.String()
	assert.Contains(t, out, "export interface PluginOptions")
	assert.Contains(t, out, "outputDir")
	assert.Contains(t, out, "cssReloadEvents")
	assert.Contains(t, out, "string[]")
	assert.Contains(t, out, "boolean | string")
	assert.Contains(t, out, "cacheTtl")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "types", "wphmr.d.ts")
	require.NoError(t, Write(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PluginOptions")
}
