package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/leaderboard/core/health"
	"github.com/dmitrymomot/leaderboard/core/response"
	"github.com/dmitrymomot/leaderboard/core/router"
)

func serve(r router.Router[*router.Context], path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/live", health.Liveness[*router.Context])

	w := serve(r, "/live")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ALIVE", w.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := health.Check{Name: "ok", Fn: func(context.Context) error { return nil }}
	down := health.Check{Name: "db", Fn: func(context.Context) error { return errors.New("connection refused") }}

	r := router.New[*router.Context](router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
	r.Get("/ready", health.Readiness[*router.Context](nil, ok, ok))
	r.Get("/degraded", health.Readiness[*router.Context](nil, ok, down))
	r.Get("/empty", health.Readiness[*router.Context](nil))

	w := serve(r, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "READY", w.Body.String())

	w = serve(r, "/degraded")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	assert.Equal(t, http.StatusOK, serve(r, "/empty").Code)
}
