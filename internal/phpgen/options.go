package phpgen

// DefaultCacheTTL is the probe cache lifetime in seconds.
const DefaultCacheTTL = 5

// BaseDevPatterns are the hostname suffixes that always count as development.
var BaseDevPatterns = []string{"local", "test", "dev"}

// Options are the settings that shape the generated plugin. The zero value
// produces the documented defaults.
type Options struct {
	DevPatterns     []string
	CSSReloadEvents []string
	CSP             CSP
	// CacheTTL in seconds; values <= 0 fall back to DefaultCacheTTL.
	CacheTTL int
}

// DevPatternList returns the base patterns followed by the configured ones,
// in order and without deduplication.
func DevPatternList(opts Options) []string {
	patterns := make([]string, 0, len(BaseDevPatterns)+len(opts.DevPatterns))
	patterns = append(patterns, BaseDevPatterns...)
	patterns = append(patterns, opts.DevPatterns...)
	return patterns
}

func (o Options) cacheTTL() int {
	if o.CacheTTL <= 0 {
		return DefaultCacheTTL
	}
	return o.CacheTTL
}
