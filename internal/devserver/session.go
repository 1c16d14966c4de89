package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// HMRProtocol is the websocket subprotocol the Vite client speaks.
const HMRProtocol = "vite-hmr"

// Message is the envelope of every payload the dev server pushes.
type Message struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
}

// Session is a live connection to the dev server HMR socket. The dev session
// is considered over once the socket closes.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger
	// OnMessage, when set, sees every decoded message.
	OnMessage func(Message)
}

// WebSocketURL maps http to ws and https to wss, keeping host and path.
func WebSocketURL(origin *url.URL) *url.URL {
	ws := *origin
	switch origin.Scheme {
	case "https":
		ws.Scheme = "wss"
	default:
		ws.Scheme = "ws"
	}
	if ws.Path == "" {
		ws.Path = "/"
	}
	ws.RawQuery = ""
	ws.Fragment = ""
	return &ws
}

// Dial opens the HMR socket. A nil logger discards logs.
func Dial(ctx context.Context, origin *url.URL, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: defaultProbeTimeout,
		Subprotocols:     []string{HMRProtocol},
	}
	target := WebSocketURL(origin)
	conn, resp, err := dialer.DialContext(ctx, target.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target.Redacted(), err)
	}
	logger.Debug("Connected to dev server HMR socket", "url", target.Redacted(), "protocol", conn.Subprotocol())
	return &Session{conn: conn, logger: logger}, nil
}

// Wait blocks until the socket closes or ctx is done. A normal close or
// ctx cancellation returns nil.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && (closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway) {
				s.logger.Debug("Dev server closed HMR socket", "code", closeErr.Code)
				return nil
			}
			return fmt.Errorf("hmr socket: %w", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.logger.Debug("Ignoring undecodable HMR message", "error", err)
			continue
		}
		switch msg.Type {
		case "connected", "full-reload", "update":
			s.logger.Debug("HMR message", "type", msg.Type)
		case "custom":
			s.logger.Debug("HMR custom event", "event", msg.Event)
		}
		if s.OnMessage != nil {
			s.OnMessage(msg)
		}
	}
}

// Close closes the socket.
func (s *Session) Close() error {
	return s.conn.Close()
}
