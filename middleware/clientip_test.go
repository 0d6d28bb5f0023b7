package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/leaderboard/core/handler"
	"github.com/dmitrymomot/leaderboard/core/response"
	"github.com/dmitrymomot/leaderboard/core/router"
	"github.com/dmitrymomot/leaderboard/middleware"
)

func TestClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		trust bool
		want  string
	}{
		{name: "remote address by default", trust: false, want: "10.0.0.1"},
		{name: "proxy headers when trusted", trust: true, want: "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := router.New[*router.Context]()
			r.Use(middleware.ClientIPWithConfig[*router.Context](middleware.ClientIPConfig{TrustProxyHeaders: tt.trust}))

			var got string
			r.Get("/ip", func(ctx *router.Context) handler.Response {
				got, _ = middleware.GetClientIP(ctx)
				return response.NoContent()
			})

			req := httptest.NewRequest(http.MethodGet, "/ip", nil)
			req.RemoteAddr = "10.0.0.1:4000"
			req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
			r.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientIPNotSet(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	var ok bool
	r.Get("/ip", func(ctx *router.Context) handler.Response {
		_, ok = middleware.GetClientIP(ctx)
		return response.NoContent()
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ip", nil))

	assert.False(t, ok)
}
