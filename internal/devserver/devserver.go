// Package devserver finds a running Vite dev server and follows its HMR
// session.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrInvalidOrigin = errors.New("invalid dev server origin")
	ErrNotFound      = errors.New("no dev server found")
)

// ClientPath is requested to confirm a candidate really is Vite.
const ClientPath = "/@vite/client"

const defaultProbeTimeout = 2 * time.Second

// ParseOrigin accepts an absolute http(s) URL with a host.
func ParseOrigin(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q must use http or https", ErrInvalidOrigin, raw)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidOrigin, raw)
	}
	return u, nil
}

// Detect returns the first candidate that serves the Vite client. A nil client
// uses a short-timeout default.
func Detect(ctx context.Context, client *http.Client, candidates []string) (*url.URL, error) {
	if client == nil {
		client = &http.Client{Timeout: defaultProbeTimeout}
	}
	var errs []error
	for _, candidate := range candidates {
		u, err := ParseOrigin(candidate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := probe(ctx, client, u); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.Redacted(), err))
			continue
		}
		return u, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) == 0 {
		return nil, ErrNotFound
	}
	return nil, fmt.Errorf("%w: %w", ErrNotFound, errors.Join(errs...))
}

func probe(ctx context.Context, client *http.Client, origin *url.URL) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin.Scheme+"://"+origin.Host+ClientPath, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
