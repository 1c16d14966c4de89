package wphmr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/cache"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/devhost"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/devserver"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/phpgen"
	"github.com/artkrsk/vite-plugin-wp-hmr/internal/utils"
)

var (
	ErrInvalidOrigin = devserver.ErrInvalidOrigin
	ErrNoDevServer   = errors.New("dev server not reachable")
	ErrNotStarted    = errors.New("engine not started")
)

type Engine struct {
	Logger    *slog.Logger
	Config    *Config
	Generator Generator
	HotReload *HotReload
	// LoadConfig re-reads the config when the watched file changes. Dev
	// builds only; nil disables reloading.
	LoadConfig func() (Config, error)
	// OnSessionEnd runs once when the dev server HMR socket closes.
	OnSessionEnd func()

	mu          sync.Mutex
	origin      *url.URL
	path        string
	store       cache.Store
	host        *devhost.Host
	hostConfig  *Config
	sessionDone chan struct{}
	endOnce     sync.Once
}

// New creates a new wphmr Engine instance
func New(config Config) (*Engine, error) {
	engine := &Engine{
		Logger:      slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(config.LogLevel)})),
		Config:      &config,
		Generator:   ScriptGenerator{},
		sessionDone: make(chan struct{}),
	}

	// Validate config first to set defaults
	if err := engine.Config.Validate(); err != nil {
		engine.Logger.Error("Failed to validate config", "error", err)
		return nil, err
	}

	path, err := utils.ArtifactPath(config.OutputDir, engine.Config.FileName)
	if err != nil {
		return nil, err
	}
	engine.path = path
	return engine, nil
}

// ArtifactPath is where the plugin file is written.
func (engine *Engine) ArtifactPath() string {
	return engine.path
}

// Origin returns the resolved dev server origin, nil before Start.
func (engine *Engine) Origin() *url.URL {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.origin
}

// Done is closed when the dev server session ends.
func (engine *Engine) Done() <-chan struct{} {
	return engine.sessionDone
}

// Start writes the plugin and starts dev tools.
func (engine *Engine) Start(ctx context.Context) error {
	if err := engine.Write(ctx); err != nil {
		return err
	}
	// Initialize dev tools (session monitor, config watcher) - no-op in prod builds
	return engine.initDevTools(ctx)
}

// Write resolves the origin and writes the plugin once, without dev tools.
func (engine *Engine) Write(ctx context.Context) error {
	origin, err := ResolveOrigin(ctx, *engine.Config)
	if err != nil {
		engine.Logger.Error("Failed to resolve dev server origin", "error", err)
		return err
	}
	engine.Logger.Debug("Using dev server", "origin", origin.String())

	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.origin = origin
	return engine.writeLocked()
}

// ResolveOrigin returns the explicit Origin, or the first reachable candidate.
func ResolveOrigin(ctx context.Context, config Config) (*url.URL, error) {
	if config.Origin != "" {
		return devserver.ParseOrigin(config.Origin)
	}
	candidates := config.Candidates
	if len(candidates) == 0 {
		candidates = []string{DefaultOrigin}
	}
	origin, err := devserver.Detect(ctx, nil, candidates)
	if err != nil {
		if errors.Is(err, devserver.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNoDevServer, err)
		}
		return nil, err
	}
	return origin, nil
}

// Regenerate rewrites the plugin for the current config and origin.
func (engine *Engine) Regenerate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.origin == nil {
		return ErrNotStarted
	}
	return engine.writeLocked()
}

// Reload swaps in a new config and regenerates. Output location and origin
// are fixed for the engine's lifetime.
func (engine *Engine) Reload(ctx context.Context, config Config) error {
	engine.mu.Lock()
	current := *engine.Config
	engine.mu.Unlock()

	config.OutputDir = current.OutputDir
	config.FileName = current.FileName
	config.Origin = current.Origin
	config.ConfigFile = current.ConfigFile
	if err := config.Validate(); err != nil {
		return err
	}
	engine.mu.Lock()
	engine.Config = &config
	engine.mu.Unlock()
	engine.Logger.Info("Config reloaded")
	return engine.Regenerate(ctx)
}

func (engine *Engine) writeLocked() error {
	code, err := engine.Generator.Generate(phpgen.NewOrigin(engine.origin), engine.Config)
	if err != nil {
		engine.Logger.Error("Failed to generate plugin", "error", err)
		return err
	}
	if err := utils.WriteFileAtomic(engine.path, []byte(code), 0o644); err != nil {
		engine.Logger.Error("Failed to write plugin", "path", engine.path, "error", err)
		return err
	}
	engine.Logger.Info("Wrote dev server plugin", "path", engine.path, "origin", engine.origin.String())
	return nil
}

// DevHost returns the Go-native equivalent of the generated plugin, wired to
// the engine's cache and built from the current config. Start must have
// resolved the origin.
func (engine *Engine) DevHost() (*devhost.Host, error) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.origin == nil {
		return nil, ErrNotStarted
	}
	if engine.host != nil && engine.hostConfig == engine.Config {
		return engine.host, nil
	}
	if engine.store == nil {
		store, err := cache.NewCache(engine.Config.Cache)
		if err != nil {
			return nil, fmt.Errorf("open probe cache: %w", err)
		}
		engine.store = store
	}
	engine.host = devhost.New(devhost.Config{
		Origin:  phpgen.NewOrigin(engine.origin),
		Options: engine.Config.Options(),
		Store:   engine.store,
		Logger:  engine.Logger,
	})
	engine.hostConfig = engine.Config
	return engine.host, nil
}

// Middleware wraps next with DevHost, resolved per request so it follows
// Start and Reload. Until the engine is started requests pass through.
func (engine *Engine) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, err := engine.DevHost()
		if err != nil {
			engine.Logger.Debug("Dev host middleware inactive", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		host.Middleware(next).ServeHTTP(w, r)
	})
}

func (engine *Engine) endSession() {
	engine.endOnce.Do(func() {
		close(engine.sessionDone)
		if engine.OnSessionEnd != nil {
			engine.OnSessionEnd()
		}
	})
}

// Shutdown stops dev tools and removes the plugin when cleanup is enabled.
// The context can be used to set a timeout for the shutdown.
func (engine *Engine) Shutdown(ctx context.Context) error {
	engine.Logger.Info("Shutting down wphmr engine")

	// Stop session monitor and watcher (dev only)
	engine.stopDevTools()

	var errs []error
	if engine.Config.Cleanup && engine.path != "" {
		removed, err := utils.RemoveFile(engine.path)
		if err != nil {
			engine.Logger.Error("Failed to remove plugin", "path", engine.path, "error", err)
			errs = append(errs, err)
		} else if removed {
			engine.Logger.Info("Removed dev server plugin", "path", engine.path)
		}
	}

	engine.mu.Lock()
	if closer, ok := engine.store.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	engine.store = nil
	engine.host = nil
	engine.hostConfig = nil
	engine.mu.Unlock()

	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}
	engine.Logger.Info("wphmr engine shutdown complete")
	return errors.Join(errs...)
}
