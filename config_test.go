package wphmr

import (
	"testing"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_ValidateDefaults(t *testing.T) {
	c := Config{OutputDir: t.TempDir()}
	require.NoError(t, c.Validate())

	assert.Equal(t, DefaultFileName, c.FileName)
	assert.Equal(t, phpgen.DefaultCacheTTL, c.CacheTTL)
	assert.Equal(t, []string{DefaultOrigin}, c.Candidates)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, phpgen.CSPDefault, c.CSP.Kind())
}

func TestConfig_ValidateErrors(t *testing.T) {
	c := Config{}
	assert.ErrorIs(t, c.Validate(), ErrMissingOutputDir)

	for _, name := range []string{"sub/file.php", `sub\file.php`, "..", "."} {
		c := Config{OutputDir: "out", FileName: name}
		assert.ErrorIs(t, c.Validate(), ErrInvalidFileName, name)
	}
}

func TestParseCSP(t *testing.T) {
	tests := []struct {
		in     any
		kind   phpgen.CSPKind
		policy string
	}{
		{nil, phpgen.CSPDefault, phpgen.DefaultPolicy},
		{true, phpgen.CSPDefault, phpgen.DefaultPolicy},
		{false, phpgen.CSPDisabled, ""},
		{"", phpgen.CSPDefault, phpgen.DefaultPolicy},
		{"false", phpgen.CSPDisabled, ""},
		{"TRUE", phpgen.CSPDefault, phpgen.DefaultPolicy},
		{"default-src 'self'", phpgen.CSPCustom, "default-src 'self'"},
	}
	for _, tt := range tests {
		got, err := ParseCSP(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.kind, got.Kind(), tt.in)
		assert.Equal(t, tt.policy, got.Policy(), tt.in)
	}

	_, err := ParseCSP(42)
	assert.ErrorIs(t, err, ErrInvalidCSP)
}

func TestGenerate(t *testing.T) {
	code, err := Generate("http://localhost:5173", Config{})
	require.NoError(t, err)
	assert.Contains(t, code, `src="http://localhost:5173/@vite/client"`)
	assert.Contains(t, code, "set_transient($cache_key, $running ? '1' : '0', 5);")

	code, err = Generate("not a url", Config{})
	assert.ErrorIs(t, err, ErrInvalidOrigin)
	assert.Empty(t, code)
}
