package phpgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrigin(t *testing.T) {
	tests := []struct {
		raw       string
		host      string
		port      int
		rendered  string
		clientURL string
	}{
		{"http://localhost:5173", "localhost", 5173, "http://localhost:5173", "http://localhost:5173/@vite/client"},
		{"HTTPS://mysite.local", "mysite.local", 443, "https://mysite.local", "https://mysite.local/@vite/client"},
		{"http://127.0.0.1", "127.0.0.1", 80, "http://127.0.0.1", "http://127.0.0.1/@vite/client"},
		{"http://[::1]:5173", "::1", 5173, "http://[::1]:5173", "http://[::1]:5173/@vite/client"},
		{"https://mysite.local:3000/base/", "mysite.local", 3000, "https://mysite.local:3000", "https://mysite.local:3000/@vite/client"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			o := mustOrigin(t, tt.raw)
			assert.Equal(t, tt.host, o.Host)
			assert.Equal(t, tt.port, o.Port)
			assert.Equal(t, tt.rendered, o.String())
			assert.Equal(t, tt.clientURL, o.ClientURL())
		})
	}
}

func TestCSP(t *testing.T) {
	var zero CSP
	assert.Equal(t, CSPDefault, zero.Kind())
	assert.Equal(t, DefaultPolicy, zero.Policy())
	assert.True(t, zero.Enabled())

	assert.False(t, DisabledCSP().Enabled())
	assert.Empty(t, DisabledCSP().Policy())

	custom := CustomCSP("default-src 'self'")
	assert.Equal(t, CSPCustom, custom.Kind())
	assert.Equal(t, "default-src 'self'", custom.Policy())
	assert.Equal(t, "custom", custom.String())
}

func TestPHPLiterals(t *testing.T) {
	assert.Equal(t, `'it\'s'`, phpSingle("it's"))
	assert.Equal(t, `'a\\b'`, phpSingle(`a\b`))
	assert.Equal(t, `"'self' \$x \"q\""`, phpDouble(`'self' $x "q"`))
	assert.Equal(t, `['a', 'b']`, phpArray([]string{"a", "b"}))
	assert.Equal(t, `[]`, phpArray(nil))
}
