package initcmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b ,"))
	assert.Nil(t, splitList("  "))
}

func TestRender(t *testing.T) {
	a := answers{OutputDir: " wp-content/mu-plugins ", Events: "css-update, theme", CSP: false, Cleanup: true}
	data, err := Render(a.fileConfig())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, "wp-content/mu-plugins", decoded["output_dir"])
	assert.Equal(t, []any{"css-update", "theme"}, decoded["css_reload_events"])
	assert.Equal(t, false, decoded["csp"])
	assert.Equal(t, true, decoded["cleanup"])
	assert.NotContains(t, decoded, "origin")
	assert.NotContains(t, decoded, "dev_patterns")
}

func TestRender_CustomPolicy(t *testing.T) {
	data, err := Render(FileConfig{OutputDir: "out", CSP: "default-src 'self'"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "csp: default-src 'self'")
}
