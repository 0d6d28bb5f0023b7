package response

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/leaderboard/core/handler"
)

// WebSocketSession runs for the lifetime of an upgraded connection. ctx is
// the request context.
type WebSocketSession func(ctx context.Context, conn *websocket.Conn) error

// WebSocketOption configures the upgrade.
type WebSocketOption func(*wsUpgrade)

type wsUpgrade struct {
	upgrader websocket.Upgrader
	onError  func(context.Context, error)
}

// Shared across upgrades; idle connections hold no write buffer.
var wsWriteBuffers sync.Pool

// WithWSHandshakeTimeout bounds the upgrade handshake.
func WithWSHandshakeTimeout(d time.Duration) WebSocketOption {
	return func(u *wsUpgrade) { u.upgrader.HandshakeTimeout = d }
}

// WithWSOrigins accepts cross-origin upgrades from the listed origins in
// addition to same-origin ones. "*" accepts any origin.
func WithWSOrigins(origins ...string) WebSocketOption {
	return func(u *wsUpgrade) {
		if len(origins) == 0 {
			return
		}
		u.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin) {
				return true
			}
			return sameOrigin(r)
		}
	}
}

// WithWSAllowAnyOrigin disables the origin check.
func WithWSAllowAnyOrigin() WebSocketOption {
	return WithWSOrigins("*")
}

// WithWSErrorHandler receives upgrade and session errors. They cannot reach
// the router's error handler because the connection is hijacked.
func WithWSErrorHandler(fn func(context.Context, error)) WebSocketOption {
	return func(u *wsUpgrade) { u.onError = fn }
}

// WebSocket upgrades the request and runs session. The connection is closed
// when session returns. A failed upgrade has already written its own 4xx.
func WebSocket(session WebSocketSession, opts ...WebSocketOption) handler.Response {
	u := &wsUpgrade{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 4096,
			WriteBufferPool: &wsWriteBuffers,
		},
		onError: func(context.Context, error) {},
	}
	for _, opt := range opts {
		opt(u)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		conn, err := u.upgrader.Upgrade(w, r, nil)
		if err != nil {
			u.onError(r.Context(), err)
			return nil
		}
		defer conn.Close()

		if err := session(r.Context(), conn); err != nil {
			u.onError(r.Context(), err)
		}
		return nil
	}
}

func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	for _, scheme := range []string{"http://", "https://"} {
		if origin == scheme+r.Host {
			return true
		}
	}
	return false
}
