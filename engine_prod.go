//go:build prod

package wphmr

import "context"

// initDevTools is a no-op in production builds
func (engine *Engine) initDevTools(ctx context.Context) error {
	engine.Logger.Info("Running wphmr in production mode")
	return nil
}

// stopDevTools is a no-op in production builds
func (engine *Engine) stopDevTools() {}
