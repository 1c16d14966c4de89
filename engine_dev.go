//go:build !prod

package wphmr

import (
	"context"
	"os"
)

// initDevTools starts the session monitor and the config watcher
func (engine *Engine) initDevTools(ctx context.Context) error {
	// If running in production mode (APP_ENV), skip dev tools
	if os.Getenv("APP_ENV") == "production" {
		engine.Logger.Info("Running wphmr in production mode")
		return nil
	}

	engine.Logger.Info("Running wphmr in development mode")
	engine.Logger.Debug("Starting hot reload monitor")
	engine.HotReload = newHotReload(engine)
	if err := engine.HotReload.Start(ctx); err != nil {
		engine.Logger.Error("Failed to start hot reload monitor", "error", err)
		return err
	}
	return nil
}

// stopDevTools stops the session monitor and the watcher (dev only)
func (engine *Engine) stopDevTools() {
	if engine.HotReload != nil {
		engine.Logger.Debug("Hot reload monitor stopping")
		engine.HotReload.Stop()
	}
}
