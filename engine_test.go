package wphmr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/artkrsk/vite-plugin-wp-hmr/internal/devserver"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// viteServer serves the client module and an HMR socket. Closing the
// returned channel makes the server end every open session.
func viteServer(t *testing.T) (*httptest.Server, chan struct{}) {
	t.Helper()
	end := make(chan struct{})
	upgrader := websocket.Upgrader{Subprotocols: []string{devserver.HMRProtocol}}
	mux := http.NewServeMux()
	mux.HandleFunc(devserver.ClientPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript")
		_, _ = w.Write([]byte("export const createHotContext = () => {};"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
		select {
		case <-end:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopped"))
		case <-closed:
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, end
}

func newEngine(t *testing.T, config Config) *Engine {
	t.Helper()
	t.Setenv("APP_ENV", "")
	if config.OutputDir == "" {
		config.OutputDir = t.TempDir()
	}
	engine, err := New(config)
	require.NoError(t, err)
	return engine
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{})
	assert.ErrorIs(t, err, ErrMissingOutputDir)

	_, err = New(Config{OutputDir: t.TempDir(), FileName: "a/b.php"})
	assert.ErrorIs(t, err, ErrInvalidFileName)
}

func TestEngine_StartWritesAndShutdownRemoves(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL, Cleanup: true, CSSReloadEvents: []string{"css-update"}})

	require.NoError(t, engine.Start(context.Background()))
	assert.Equal(t, srv.URL, engine.Origin().String())

	data, err := os.ReadFile(engine.ArtifactPath())
	require.NoError(t, err)
	want, err := Generate(srv.URL, *engine.Config)
	require.NoError(t, err)
	assert.Equal(t, want, string(data))
	assert.Equal(t, DefaultFileName, filepath.Base(engine.ArtifactPath()))

	require.NoError(t, engine.Shutdown(context.Background()))
	_, err = os.Stat(engine.ArtifactPath())
	assert.True(t, os.IsNotExist(err))

	// A second shutdown finds nothing to remove.
	assert.NoError(t, engine.Shutdown(context.Background()))
}

func TestEngine_CleanupDisabledKeepsFile(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL})

	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Shutdown(context.Background()))
	assert.FileExists(t, engine.ArtifactPath())
}

func TestEngine_DetectsFromCandidates(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Candidates: []string{"http://127.0.0.1:1", srv.URL}, Cleanup: true})

	require.NoError(t, engine.Start(context.Background()))
	defer engine.Shutdown(context.Background())
	assert.Equal(t, srv.URL, engine.Origin().String())
}

func TestEngine_NoDevServer(t *testing.T) {
	engine := newEngine(t, Config{Candidates: []string{"http://127.0.0.1:1"}})

	err := engine.Start(context.Background())
	assert.ErrorIs(t, err, ErrNoDevServer)
	assert.NoFileExists(t, engine.ArtifactPath())
}

func TestEngine_InvalidOrigin(t *testing.T) {
	engine := newEngine(t, Config{Origin: "localhost:5173"})
	assert.ErrorIs(t, engine.Start(context.Background()), ErrInvalidOrigin)
}

func TestEngine_NotStarted(t *testing.T) {
	engine := newEngine(t, Config{})

	assert.ErrorIs(t, engine.Regenerate(context.Background()), ErrNotStarted)
	_, err := engine.DevHost()
	assert.ErrorIs(t, err, ErrNotStarted)

	next := http.NotFoundHandler()
	assert.NotNil(t, engine.Middleware(next))
}

func TestEngine_ReloadRewritesFile(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL, Cleanup: true})
	require.NoError(t, engine.Start(context.Background()))
	defer engine.Shutdown(context.Background())

	data, err := os.ReadFile(engine.ArtifactPath())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "theme-css")

	next := Config{OutputDir: "ignored", CSSReloadEvents: []string{"theme-css"}}
	require.NoError(t, engine.Reload(context.Background(), next))

	data, err = os.ReadFile(engine.ArtifactPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), `hot.on("theme-css"`)
	assert.NotEqual(t, "ignored", engine.Config.OutputDir)
}

func TestEngine_SessionEndClosesDone(t *testing.T) {
	srv, end := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL, Cleanup: true})

	var calls int32
	engine.OnSessionEnd = func() { atomic.AddInt32(&calls, 1) }
	require.NoError(t, engine.Start(context.Background()))

	select {
	case <-engine.Done():
		t.Fatal("session ended before the server stopped")
	case <-time.After(50 * time.Millisecond):
	}

	close(end)
	select {
	case <-engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session end not observed")
	}
	require.NoError(t, engine.Shutdown(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.NoFileExists(t, engine.ArtifactPath())
}

func TestEngine_ShutdownDoesNotEndSession(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL})
	require.NoError(t, engine.Start(context.Background()))
	require.NoError(t, engine.Shutdown(context.Background()))

	select {
	case <-engine.Done():
		t.Fatal("shutdown reported a dropped session")
	default:
	}
}

func TestEngine_ConfigWatcherRegenerates(t *testing.T) {
	srv, _ := viteServer(t)
	dir := t.TempDir()
	configFile := filepath.Join(dir, "wphmr.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("v1"), 0o644))

	engine := newEngine(t, Config{Origin: srv.URL, ConfigFile: configFile})
	var events atomic.Value
	events.Store([]string{})
	engine.LoadConfig = func() (Config, error) {
		return Config{CSSReloadEvents: events.Load().([]string)}, nil
	}
	require.NoError(t, engine.Start(context.Background()))
	defer engine.Shutdown(context.Background())

	events.Store([]string{"watched-css"})
	require.NoError(t, os.WriteFile(configFile, []byte("v2"), 0o644))

	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(engine.ArtifactPath())
		return err == nil && strings.Contains(string(data), `hot.on("watched-css"`)
	}, 3*time.Second, 25*time.Millisecond)
}

func TestEngine_MiddlewareAfterStart(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL})
	require.NoError(t, engine.Start(context.Background()))
	defer engine.Shutdown(context.Background())

	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head></head><body></body></html>"))
	})
	handler := engine.Middleware(page)

	req := httptest.NewRequest(http.MethodGet, "http://site.local/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Body.String(), srv.URL+"/@vite/client")
}

func TestEngine_MiddlewareFollowsStartAndReload(t *testing.T) {
	srv, _ := viteServer(t)
	engine := newEngine(t, Config{Origin: srv.URL})

	page := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head></head><body></body></html>"))
	})
	handler := engine.Middleware(page)
	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://site.local/", nil))
		return rec
	}

	rec := serve()
	assert.Equal(t, "<html><head></head><body></body></html>", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))

	require.NoError(t, engine.Start(context.Background()))
	defer engine.Shutdown(context.Background())

	rec = serve()
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Body.String(), srv.URL+"/@vite/client")
	assert.NotContains(t, rec.Body.String(), "reloaded-css")

	require.NoError(t, engine.Reload(context.Background(), Config{
		CSP:             DisabledCSP(),
		CSSReloadEvents: []string{"reloaded-css"},
	}))

	rec = serve()
	assert.Empty(t, rec.Header().Get("Content-Security-Policy"))
	assert.Contains(t, rec.Body.String(), `hot.on("reloaded-css"`)
}
