package devhost

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/cache"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
)

// DialFunc matches net.Dialer.DialContext.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

const probeTimeout = 100 * time.Millisecond

// IsDevHost applies the generated detector's rules to a Host header value:
// exact localhost / 127.0.0.1 first, then a case-insensitive ".pattern"
// suffix match against patterns in order.
func IsDevHost(host string, patterns []string) bool {
	host = strings.ToLower(stripPort(host))
	if host == "localhost" || host == "127.0.0.1" {
		return true
	}
	for _, pattern := range patterns {
		if strings.HasSuffix(host, "."+strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// stripPort drops a trailing :digits, like the generated preg_replace.
func stripPort(host string) string {
	i := strings.LastIndexByte(host, ':')
	if i < 0 || i == len(host)-1 {
		return host
	}
	if _, err := strconv.Atoi(host[i+1:]); err != nil {
		return host
	}
	return host[:i]
}

// Prober is the cached reachability check. A cached false is authoritative
// until it expires, so a dev server started mid-window is seen only after TTL.
type Prober struct {
	Store   cache.Store
	Host    string
	Port    int
	TTL     time.Duration
	Dial    DialFunc
	Metrics *Metrics
}

// Key is the namespaced cache key for the probed port.
func (p *Prober) Key() string {
	return phpgen.CacheKey(p.Port)
}

// Running reports whether the dev server accepts TCP connections. Dial errors
// mean "not running" and are never returned.
func (p *Prober) Running(ctx context.Context) bool {
	key := p.Key()
	if value, found := p.Store.Get(ctx, key); found {
		p.Metrics.probe("hit")
		return value
	}
	p.Metrics.probe("miss")

	dial := p.Dial
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}
	dialCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	running := false
	conn, err := dial(dialCtx, "tcp", net.JoinHostPort(p.Host, strconv.Itoa(p.Port)))
	if err == nil {
		running = true
		_ = conn.Close()
	}
	p.Store.Set(ctx, key, running, p.TTL)
	return running
}
