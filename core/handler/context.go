package handler

import (
	"context"
	"net/http"
)

// Context is what middleware needs from a request context: the request and
// writer being served, and a way to attach request-scoped values that later
// handlers read back through context.Context.Value. Path parameters are left
// to concrete types such as router.Context.
type Context interface {
	context.Context

	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	SetValue(key, val any)
}
