//go:build !prod

package wphmr

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/devserver"
	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events editors emit on save.
const reloadDebounce = 150 * time.Millisecond

// HotReload watches the dev server session and the config file.
type HotReload struct {
	engine  *Engine
	cancel  context.CancelFunc
	watcher *fsnotify.Watcher
	wg      sync.WaitGroup
}

func newHotReload(engine *Engine) *HotReload {
	return &HotReload{engine: engine}
}

// Start dials the HMR socket and, when a config file is set, watches it.
// An unreachable socket only disables the session monitor.
func (hr *HotReload) Start(ctx context.Context) error {
	ctx, hr.cancel = context.WithCancel(ctx)
	logger := hr.engine.Logger

	origin := hr.engine.Origin()
	if origin == nil {
		return ErrNotStarted
	}
	session, err := devserver.Dial(ctx, origin, logger)
	if err != nil {
		logger.Warn("HMR socket unavailable, session monitor disabled", "error", err)
	} else {
		hr.wg.Add(1)
		go hr.monitor(ctx, session)
	}

	path := hr.engine.Config.ConfigFile
	if path == "" || hr.engine.LoadConfig == nil {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory so atomic saves (rename over) are still seen.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return err
	}
	hr.watcher = watcher
	hr.wg.Add(1)
	go hr.watch(ctx, abs)
	logger.Debug("Watching config file", "path", abs)
	return nil
}

func (hr *HotReload) monitor(ctx context.Context, session *devserver.Session) {
	defer hr.wg.Done()
	defer session.Close()

	err := session.Wait(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		hr.engine.Logger.Warn("HMR socket dropped", "error", err)
	} else {
		hr.engine.Logger.Info("Dev server session ended")
	}
	hr.engine.endSession()
}

func (hr *HotReload) watch(ctx context.Context, target string) {
	defer hr.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-hr.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case err, ok := <-hr.watcher.Errors:
			if !ok {
				return
			}
			hr.engine.Logger.Warn("Config watcher error", "error", err)
		case <-fire:
			fire = nil
			hr.reload(ctx)
		}
	}
}

func (hr *HotReload) reload(ctx context.Context) {
	config, err := hr.engine.LoadConfig()
	if err != nil {
		hr.engine.Logger.Error("Failed to reload config", "error", err)
		return
	}
	if err := hr.engine.Reload(ctx, config); err != nil {
		hr.engine.Logger.Error("Failed to regenerate plugin", "error", err)
	}
}

// Stop ends both goroutines and waits for them.
func (hr *HotReload) Stop() {
	if hr.cancel != nil {
		hr.cancel()
	}
	if hr.watcher != nil {
		hr.watcher.Close()
	}
	hr.wg.Wait()
}
