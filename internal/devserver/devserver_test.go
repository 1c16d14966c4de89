package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viteServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(ClientPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/javascript")
		_, _ = w.Write([]byte("export const createHotContext = () => {};"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestParseOrigin(t *testing.T) {
	u, err := ParseOrigin(" http://localhost:5173 ")
	require.NoError(t, err)
	assert.Equal(t, "localhost:5173", u.Host)

	for _, raw := range []string{"localhost:5173", "ftp://localhost", "http://", "://bad"} {
		_, err := ParseOrigin(raw)
		assert.ErrorIs(t, err, ErrInvalidOrigin, raw)
	}
}

func TestDetect_FirstReachableCandidateWins(t *testing.T) {
	srv := viteServer(t)
	notVite := httptest.NewServer(http.NotFoundHandler())
	defer notVite.Close()

	got, err := Detect(context.Background(), nil, []string{
		"http://127.0.0.1:1",
		notVite.URL,
		srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL, got.String())
}

func TestDetect_NothingFound(t *testing.T) {
	notVite := httptest.NewServer(http.NotFoundHandler())
	defer notVite.Close()

	_, err := Detect(context.Background(), nil, []string{notVite.URL, "not a url"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "unexpected status 404")

	_, err = Detect(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWebSocketURL(t *testing.T) {
	u, _ := url.Parse("https://mysite.local:3000?x=1")
	assert.Equal(t, "wss://mysite.local:3000/", WebSocketURL(u).String())

	u, _ = url.Parse("http://localhost:5173/base/")
	assert.Equal(t, "ws://localhost:5173/base/", WebSocketURL(u).String())
}

func hmrServer(t *testing.T, handle func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{Subprotocols: []string{HMRProtocol}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handle(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSession_WaitReturnsWhenServerCloses(t *testing.T) {
	srv := hmrServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"connected"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"custom","event":"wp:css-update"}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
		_ = conn.Close()
	})

	origin, err := ParseOrigin(srv.URL)
	require.NoError(t, err)
	session, err := Dial(context.Background(), origin, nil)
	require.NoError(t, err)
	defer session.Close()

	var mu sync.Mutex
	var seen []Message
	session.OnMessage = func(m Message) {
		mu.Lock()
		seen = append(seen, m)
		mu.Unlock()
	}

	require.NoError(t, session.Wait(context.Background()))
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "connected", seen[0].Type)
	assert.Equal(t, "wp:css-update", seen[1].Event)
}

func TestSession_WaitStopsOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := hmrServer(t, func(conn *websocket.Conn) {
		<-release
		_ = conn.Close()
	})
	defer close(release)

	origin, _ := ParseOrigin(srv.URL)
	session, err := Dial(context.Background(), origin, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.NoError(t, session.Wait(ctx))
}

func TestDial_RefusedConnection(t *testing.T) {
	origin, _ := ParseOrigin("http://127.0.0.1:1")
	_, err := Dial(context.Background(), origin, nil)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "dial ws://127.0.0.1:1/"))
}
