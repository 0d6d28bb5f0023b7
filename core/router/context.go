package router

import (
	"context"
	"net/http"
)

// Context is the router's default handler.Context. Its context.Context
// methods follow the request context, including values added by SetValue.
type Context struct {
	context.Context

	w http.ResponseWriter
	r *http.Request
}

// NewContext is the default context factory.
func NewContext(w http.ResponseWriter, r *http.Request) *Context {
	return &Context{Context: r.Context(), w: w, r: r}
}

// SetValue derives a request carrying key=val. Later middleware and the
// handler see the value through both Value and Request().Context().
func (c *Context) SetValue(key, val any) {
	c.r = c.r.WithContext(context.WithValue(c.r.Context(), key, val))
	c.Context = c.r.Context()
}

func (c *Context) Request() *http.Request              { return c.r }
func (c *Context) ResponseWriter() http.ResponseWriter { return c.w }

// Param returns the path wildcard name, e.g. "id" for "/entries/{id}".
func (c *Context) Param(name string) string { return c.r.PathValue(name) }
