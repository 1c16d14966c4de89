// Package devhost runs the generated plugin's logic natively in Go, as
// net/http middleware, for backends that are not WordPress.
package devhost

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/cache"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
)

// Config wires a Host.
type Config struct {
	Origin  phpgen.Origin
	Options phpgen.Options
	// Store holds probe results; nil uses a fresh in-memory cache.
	Store   cache.Store
	Dial    DialFunc
	Metrics *Metrics
	Logger  *slog.Logger
}

// Host applies detection, probing, injection and the CSP header per request.
type Host struct {
	opts     phpgen.Options
	patterns []string
	prober   *Prober
	markup   string
	metrics  *Metrics
	logger   *slog.Logger
}

func New(cfg Config) *Host {
	store := cfg.Store
	if store == nil {
		store = cache.NewLocalCache()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ttl := cfg.Options.CacheTTL
	if ttl <= 0 {
		ttl = phpgen.DefaultCacheTTL
	}
	return &Host{
		opts:     cfg.Options,
		patterns: phpgen.DevPatternList(cfg.Options),
		prober: &Prober{
			Store:   store,
			Host:    cfg.Origin.Host,
			Port:    cfg.Origin.Port,
			TTL:     time.Duration(ttl) * time.Second,
			Dial:    cfg.Dial,
			Metrics: cfg.Metrics,
		},
		markup:  phpgen.InjectorMarkup(cfg.Origin, cfg.Options.CSSReloadEvents),
		metrics: cfg.Metrics,
		logger:  logger,
	}
}

// IsDev reports whether r targets a development host.
func (h *Host) IsDev(r *http.Request) bool {
	return IsDevHost(r.Host, h.patterns)
}

// Prober exposes the cached reachability check.
func (h *Host) Prober() *Prober {
	return h.prober
}

// Middleware sets the dev CSP header and injects the Vite client before
// </head> of HTML responses. Non-dev hosts pass through untouched.
func (h *Host) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.IsDev(r) {
			next.ServeHTTP(w, r)
			return
		}
		if h.opts.CSP.Enabled() {
			w.Header().Set("Content-Security-Policy", h.opts.CSP.Policy())
		}
		if !h.prober.Running(r.Context()) {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedWriter{header: w.Header(), status: http.StatusOK}
		next.ServeHTTP(buf, r)

		body := buf.body.Bytes()
		if w.Header().Get("Content-Type") == "" && len(body) > 0 {
			w.Header().Set("Content-Type", http.DetectContentType(body))
		}
		if isHTML(w.Header()) {
			if injected, ok := injectHead(body, h.markup); ok {
				body = injected
				h.metrics.injected()
				h.logger.Debug("Injected Vite client", "path", r.URL.Path)
			}
		}
		if w.Header().Get("Content-Length") != "" {
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		}
		w.WriteHeader(buf.status)
		_, _ = w.Write(body)
	})
}

type bufferedWriter struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header { return b.header }

func (b *bufferedWriter) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}
	b.wroteHeader = true
	b.status = status
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}

func isHTML(h http.Header) bool {
	return strings.HasPrefix(strings.ToLower(h.Get("Content-Type")), "text/html")
}

var headClose = []byte("</head>")

// injectHead inserts markup before the first </head>, matched
// ASCII case-insensitively on the raw bytes.
func injectHead(body []byte, markup string) ([]byte, bool) {
	i := indexHeadClose(body)
	if i < 0 {
		return body, false
	}
	out := make([]byte, 0, len(body)+len(markup))
	out = append(out, body[:i]...)
	out = append(out, markup...)
	out = append(out, body[i:]...)
	return out, true
}

func indexHeadClose(body []byte) int {
	for off := 0; off+len(headClose) <= len(body); {
		j := bytes.IndexByte(body[off:], '<')
		if j < 0 {
			return -1
		}
		at := off + j
		if at+len(headClose) > len(body) {
			return -1
		}
		if bytes.EqualFold(body[at:at+len(headClose)], headClose) {
			return at
		}
		off = at + 1
	}
	return -1
}
