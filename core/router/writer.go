package router

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// responseWriter remembers whether the response has started so the router
// never writes an error page over a partial response.
type responseWriter struct {
	http.ResponseWriter
	started bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.started {
		return
	}
	w.started = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.WriteHeader(http.StatusOK)
	return w.ResponseWriter.Write(b)
}

// Written reports whether a status line has been sent or the connection
// hijacked.
func (w *responseWriter) Written() bool { return w.started }

// Unwrap lets http.ResponseController reach Flush and deadlines.
func (w *responseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Flush forwards to the underlying writer when it can flush.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		w.started = true
		f.Flush()
	}
}

// Hijack hands the connection to websocket upgrades. gorilla/websocket
// asserts http.Hijacker directly, so Unwrap alone is not enough.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("router: %T cannot be hijacked", w.ResponseWriter)
	}
	w.started = true
	return h.Hijack()
}
