package router

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/leaderboard/core/handler"
)

var (
	ErrNoContextFactory = errors.New("router: no context factory for custom context type")
	ErrNilResponse      = errors.New("router: handler returned a nil response")
	ErrInvalidPattern   = errors.New("router: route pattern must start with /")
)

// PanicError reports a recovered handler panic. It renders as a 500.
type PanicError struct {
	value any
	stack []byte
}

func newPanicError(v any) PanicError {
	return PanicError{value: v, stack: debug.Stack()}
}

func (e PanicError) Error() string   { return fmt.Sprintf("handler panic: %v", e.value) }
func (e PanicError) StatusCode() int { return http.StatusInternalServerError }

// Value is the value passed to panic.
func (e PanicError) Value() any { return e.value }

// Stack is the goroutine stack captured at recovery.
func (e PanicError) Stack() []byte { return e.stack }

// routeError is a 404 or 405 for a request no route matched.
type routeError int

func (e routeError) Error() string   { return http.StatusText(int(e)) }
func (e routeError) StatusCode() int { return int(e) }

// defaultErrorHandler writes err.Error() as plain text with the status err
// reports, or 500. Nothing is written once the response has started.
func defaultErrorHandler[C handler.Context](ctx C, err error) {
	w := ctx.ResponseWriter()
	if rw, ok := w.(*responseWriter); ok && rw.Written() {
		return
	}

	status := http.StatusInternalServerError
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}
	http.Error(w, err.Error(), status)
}
