package phpgen

import (
	"net/url"
	"strconv"
	"strings"
)

// Origin identifies the dev server the generated plugin talks to.
type Origin struct {
	Scheme string
	// Host is the bare hostname, without brackets or port.
	Host string
	// Port is always set; it falls back to the scheme default when the URL had none.
	Port int
	// Authority is host[:port] exactly as it appeared in the URL.
	Authority string
}

// NewOrigin derives an Origin from an already parsed absolute URL.
func NewOrigin(u *url.URL) Origin {
	scheme := strings.ToLower(u.Scheme)
	port := defaultPort(scheme)
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	return Origin{
		Scheme:    scheme,
		Host:      u.Hostname(),
		Port:      port,
		Authority: u.Host,
	}
}

func defaultPort(scheme string) int {
	switch scheme {
	case "https", "wss":
		return 443
	default:
		return 80
	}
}

// String renders scheme://authority with no trailing slash.
func (o Origin) String() string {
	authority := o.Authority
	if authority == "" {
		authority = o.Host
	}
	return o.Scheme + "://" + authority
}

// ClientURL is the address of the Vite hot-reload client bootstrap.
func (o Origin) ClientURL() string {
	return o.String() + ClientPath
}
