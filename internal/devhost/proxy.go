package devhost

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// NewProxy forwards every request to upstream through the host middleware.
// The incoming Host header is kept so name-based backends still route.
func NewProxy(upstream string, host *Host) (http.Handler, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upstream %q: absolute URL required", upstream)
	}
	rp := httputil.NewSingleHostReverseProxy(u)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		// Bodies are rewritten, so they must arrive uncompressed.
		r.Header.Del("Accept-Encoding")
	}
	return host.Middleware(rp), nil
}
