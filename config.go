package wphmr

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/cache"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
)

// DefaultFileName is the generated plugin's file name.
const DefaultFileName = "vite-dev-server.php"

// DefaultOrigin is where Vite listens out of the box.
const DefaultOrigin = "http://localhost:5173"

var (
	ErrMissingOutputDir = errors.New("output_dir is required")
	ErrInvalidFileName  = errors.New("file_name must be a bare file name")
	ErrInvalidCSP       = errors.New("csp must be a boolean or a policy string")
)

// CSP selects the development Content-Security-Policy.
type CSP = phpgen.CSP

// DisabledCSP turns the header off.
func DisabledCSP() CSP { return phpgen.DisabledCSP() }

// DefaultCSP sends phpgen.DefaultPolicy.
func DefaultCSP() CSP { return phpgen.DefaultCSP() }

// CustomCSP sends policy exactly as given.
func CustomCSP(policy string) CSP { return phpgen.CustomCSP(policy) }

// Config holds the plugin options plus the settings the CLI adds on top.
type Config struct {
	OutputDir       string   `mapstructure:"output_dir"`
	FileName        string   `mapstructure:"file_name"`
	DevPatterns     []string `mapstructure:"dev_patterns"`
	CSSReloadEvents []string `mapstructure:"css_reload_events"`
	// CSP is decoded separately with ParseCSP since it is bool or string.
	CSP      CSP  `mapstructure:"-"`
	CacheTTL int  `mapstructure:"cache_ttl"`
	Cleanup  bool `mapstructure:"cleanup"`
	// Origin skips auto-detection when set.
	Origin     string            `mapstructure:"origin"`
	Candidates []string          `mapstructure:"candidates"`
	Cache      cache.CacheConfig `mapstructure:"cache"`
	LogLevel   string            `mapstructure:"log_level"`
	// ConfigFile is watched for changes in dev mode.
	ConfigFile string `mapstructure:"-"`
}

// DefaultConfig returns a Config with every documented default applied.
func DefaultConfig() Config {
	return Config{
		FileName:   DefaultFileName,
		CSP:        DefaultCSP(),
		CacheTTL:   phpgen.DefaultCacheTTL,
		Cleanup:    true,
		Candidates: []string{DefaultOrigin},
		LogLevel:   "info",
	}
}

// Validate fills in defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.FileName == "" {
		c.FileName = DefaultFileName
	}
	if strings.ContainsAny(c.FileName, `/\`) || c.FileName == "." || c.FileName == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidFileName, c.FileName)
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = phpgen.DefaultCacheTTL
	}
	if len(c.Candidates) == 0 {
		c.Candidates = []string{DefaultOrigin}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}
	return nil
}

// Options is the subset of the config the generator consumes.
func (c *Config) Options() phpgen.Options {
	return phpgen.Options{
		DevPatterns:     c.DevPatterns,
		CSSReloadEvents: c.CSSReloadEvents,
		CSP:             c.CSP,
		CacheTTL:        c.CacheTTL,
	}
}

// ParseCSP decodes the loosely typed `csp` option. nil means the default.
// The strings "true" and "false" are read as booleans so env vars and flags
// behave like YAML.
func ParseCSP(v any) (CSP, error) {
	switch val := v.(type) {
	case nil:
		return DefaultCSP(), nil
	case bool:
		if val {
			return DefaultCSP(), nil
		}
		return DisabledCSP(), nil
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return DefaultCSP(), nil
		}
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return ParseCSP(b)
		}
		return CustomCSP(val), nil
	default:
		return CSP{}, fmt.Errorf("%w: got %T", ErrInvalidCSP, v)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
