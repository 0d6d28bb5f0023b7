package handler

import (
	"net/http"
	"slices"
)

// Response writes a reply. Returning an error instead of writing lets the
// router render it through its ErrorHandler.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc turns a request context into a Response.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler renders errors from handlers, panics and unmatched routes.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware decorates a HandlerFunc. It may act before calling next, or wrap
// the Response next returns to act at write time.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]

// Chain wraps endpoint in middlewares, the first one outermost.
func Chain[C Context](middlewares []Middleware[C], endpoint HandlerFunc[C]) HandlerFunc[C] {
	for _, mw := range slices.Backward(middlewares) {
		endpoint = mw(endpoint)
	}
	return endpoint
}
