//go:build prod

package wphmr

import "context"

// HotReload is a stub for production builds
type HotReload struct{}

// newHotReload returns nil in production (session monitor disabled)
func newHotReload(engine *Engine) *HotReload {
	return nil
}

// Start is a no-op in production
func (hr *HotReload) Start(ctx context.Context) error { return nil }

// Stop is a no-op in production
func (hr *HotReload) Stop() {}
