package router

import (
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrymomot/leaderboard/core/handler"
)

// Router registers typed handlers and serves them as an http.Handler.
type Router[C handler.Context] interface {
	http.Handler

	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Method(method, pattern string, h handler.HandlerFunc[C])

	// Use appends middleware. It applies to routes registered before and
	// after the call; it never runs for unmatched requests.
	Use(middlewares ...handler.Middleware[C])

	// Routes lists registrations in order.
	Routes() []Route
}

// Route is one method and pattern registration.
type Route struct {
	Method  string
	Pattern string
}

// Option configures a Router.
type Option[C handler.Context] func(*mux[C])

// WithErrorHandler replaces the plain-text default error handler.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.onError = h
		}
	}
}

// WithMiddleware is Use at construction time.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) { m.stack = append(m.stack, middlewares...) }
}

// WithContextFactory builds C for each request. Required unless C is
// *Context.
func WithContextFactory[C handler.Context](f func(http.ResponseWriter, *http.Request) C) Option[C] {
	return func(m *mux[C]) { m.newContext = f }
}

type mux[C handler.Context] struct {
	serveMux   *http.ServeMux
	onError    handler.ErrorHandler[C]
	newContext func(http.ResponseWriter, *http.Request) C

	mu      sync.RWMutex
	stack   []handler.Middleware[C]
	routes  []Route
	methods map[string][]string // pattern -> registered methods
}

// New creates a Router. Requests that match no route get 404, or 405 with
// an Allow header when the path is registered under other methods.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	m := &mux[C]{
		serveMux: http.NewServeMux(),
		onError:  defaultErrorHandler[C],
		methods:  make(map[string][]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.newContext == nil {
		m.newContext = defaultFactory[C]()
	}

	m.serveMux.HandleFunc("/", m.unmatched)
	return m
}

func defaultFactory[C handler.Context]() func(http.ResponseWriter, *http.Request) C {
	var zero C
	if _, ok := any(zero).(*Context); !ok {
		panic(ErrNoContextFactory)
	}
	return func(w http.ResponseWriter, r *http.Request) C {
		return any(NewContext(w, r)).(C)
	}
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C])  { m.Method(http.MethodGet, pattern, h) }
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) { m.Method(http.MethodPost, pattern, h) }

// Method registers h for method on pattern. Patterns use http.ServeMux
// wildcard syntax; read wildcards with Context.Param. Panics on a pattern
// that does not start with "/".
func (m *mux[C]) Method(method, pattern string, h handler.HandlerFunc[C]) {
	if !strings.HasPrefix(pattern, "/") {
		panic(fmt.Errorf("%w: %q", ErrInvalidPattern, pattern))
	}
	method = strings.ToUpper(method)

	m.mu.Lock()
	m.routes = append(m.routes, Route{Method: method, Pattern: pattern})
	m.methods[pattern] = append(m.methods[pattern], method)
	m.mu.Unlock()

	m.serveMux.HandleFunc(method+" "+pattern, func(w http.ResponseWriter, r *http.Request) {
		m.dispatch(w, r, h)
	})
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.mu.Lock()
	m.stack = append(m.stack, middlewares...)
	m.mu.Unlock()
}

func (m *mux[C]) Routes() []Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.routes)
}

func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.serveMux.ServeHTTP(w, r)
}

// dispatch runs h behind the middleware stack and renders its Response.
// Panics and errors reach the error handler unless output has started.
func (m *mux[C]) dispatch(w http.ResponseWriter, r *http.Request, h handler.HandlerFunc[C]) {
	rw := &responseWriter{ResponseWriter: w}
	ctx := m.newContext(rw, r)

	fail := func(err error) {
		if !rw.Written() {
			m.onError(ctx, err)
		}
	}
	defer func() {
		if v := recover(); v != nil {
			fail(newPanicError(v))
		}
	}()

	m.mu.RLock()
	stack := m.stack
	m.mu.RUnlock()

	resp := handler.Chain(stack, h)(ctx)
	if resp == nil {
		fail(ErrNilResponse)
		return
	}
	if err := resp(rw, ctx.Request()); err != nil {
		fail(err)
	}
}

func (m *mux[C]) unmatched(w http.ResponseWriter, r *http.Request) {
	ctx := m.newContext(&responseWriter{ResponseWriter: w}, r)

	m.mu.RLock()
	allowed := m.methods[r.URL.Path]
	m.mu.RUnlock()

	if len(allowed) == 0 {
		m.onError(ctx, routeError(http.StatusNotFound))
		return
	}
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	m.onError(ctx, routeError(http.StatusMethodNotAllowed))
}
