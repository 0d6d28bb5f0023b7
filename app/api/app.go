package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/leaderboard/core/handler"
	"github.com/dmitrymomot/leaderboard/core/health"
	"github.com/dmitrymomot/leaderboard/core/logger"
	"github.com/dmitrymomot/leaderboard/core/response"
	"github.com/dmitrymomot/leaderboard/core/router"
	"github.com/dmitrymomot/leaderboard/leaderboard"
	"github.com/dmitrymomot/leaderboard/middleware"
	"github.com/dmitrymomot/leaderboard/pkg/ratelimiter"
	"github.com/dmitrymomot/leaderboard/pkg/tokenguard"
)

// DefaultMaxBodySize bounds a score submission body.
const DefaultMaxBodySize = 4 << 10

// App is the leaderboard HTTP API.
type App struct {
	engine  *leaderboard.Engine
	guard   *tokenguard.Guard
	feed    *Feed
	limiter ratelimiter.RateLimiter
	checks  []health.Check
	logger  *slog.Logger

	trustProxyHeaders bool
	maxBodySize       int64
	corsOrigins       []string
	hsts              bool

	router router.Router[*router.Context]
}

// AppOption configures an App.
type AppOption func(*App) error

// New builds the API around an engine and a token guard.
func New(engine *leaderboard.Engine, guard *tokenguard.Guard, opts ...AppOption) (*App, error) {
	if engine == nil {
		return nil, ErrMissingEngine
	}
	if guard == nil {
		return nil, ErrMissingGuard
	}

	app := &App{
		engine:      engine,
		guard:       guard,
		logger:      logger.Discard(),
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	app.router = app.routes()
	return app, nil
}

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) AppOption {
	return func(app *App) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = l
		return nil
	}
}

// WithFeed enables the live websocket view. The feed's Publish must also be
// registered on the engine with leaderboard.WithAdmitHook.
func WithFeed(feed *Feed) AppOption {
	return func(app *App) error {
		if feed == nil {
			return errors.New("feed cannot be nil")
		}
		app.feed = feed
		return nil
	}
}

// WithRateLimiter limits session issuance and submissions per client IP.
func WithRateLimiter(limiter ratelimiter.RateLimiter) AppOption {
	return func(app *App) error {
		if limiter == nil {
			return errors.New("rate limiter cannot be nil")
		}
		app.limiter = limiter
		return nil
	}
}

// WithHealthChecks adds readiness probes.
func WithHealthChecks(checks ...health.Check) AppOption {
	return func(app *App) error {
		app.checks = append(app.checks, checks...)
		return nil
	}
}

// WithTrustProxyHeaders reads the client IP from proxy headers.
func WithTrustProxyHeaders(trust bool) AppOption {
	return func(app *App) error {
		app.trustProxyHeaders = trust
		return nil
	}
}

// WithMaxBodySize bounds the submission body size in bytes.
func WithMaxBodySize(n int64) AppOption {
	return func(app *App) error {
		if n <= 0 {
			return errors.New("max body size must be positive")
		}
		app.maxBodySize = n
		return nil
	}
}

// WithCORS lets browsers on origins call the API. "*" allows any origin.
func WithCORS(origins ...string) AppOption {
	return func(app *App) error {
		if len(origins) == 0 {
			return errors.New("cors needs at least one origin")
		}
		app.corsOrigins = origins
		return nil
	}
}

// WithHSTS sends Strict-Transport-Security. Enable it only behind TLS.
func WithHSTS(enabled bool) AppOption {
	return func(app *App) error {
		app.hsts = enabled
		return nil
	}
}

// Handler returns the API as an http.Handler.
func (a *App) Handler() http.Handler {
	return a.router
}

func (a *App) routes() router.Router[*router.Context] {
	r := router.New[*router.Context](
		router.WithErrorHandler(a.handleError),
	)

	r.Use(
		middleware.RequestIDWithConfig[*router.Context](middleware.RequestIDConfig{
			TrustIncoming: a.trustProxyHeaders,
		}),
		middleware.ClientIPWithConfig[*router.Context](middleware.ClientIPConfig{
			TrustProxyHeaders: a.trustProxyHeaders,
		}),
		middleware.LoggingWithLogger[*router.Context](a.logger),
		middleware.SecurityHeadersWithConfig[*router.Context](a.securityHeaders()),
	)
	if len(a.corsOrigins) > 0 {
		r.Use(middleware.CORSWithConfig[*router.Context](middleware.CORSConfig{
			AllowOrigins: a.corsOrigins,
			MaxAge:       600,
		}))
		// Preflight is answered by the CORS middleware.
		preflight := func(*router.Context) handler.Response { return response.NoContent() }
		r.Method(http.MethodOptions, "/api/session", preflight)
		r.Method(http.MethodOptions, "/api/leaderboard", preflight)
	}

	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](a.logger, a.checks...))

	r.Post("/api/session", a.limited("session", a.issueSession))
	r.Get("/api/leaderboard", a.listTop)
	r.Post("/api/leaderboard", a.limited("submit",
		middleware.BodyLimitWithSize[*router.Context](a.maxBodySize)(a.submitScore),
	))

	if a.feed != nil {
		r.Get("/api/leaderboard/live", a.live)
	}

	return r
}

func (a *App) securityHeaders() middleware.SecurityHeadersConfig {
	cfg := middleware.APISecurityHeaders
	if a.hsts {
		cfg.StrictTransportSecurity = middleware.DefaultHSTS
	}
	return cfg
}

// limited wraps a write route in its own per-IP rate limit when a limiter
// is set.
func (a *App) limited(scope string, h handler.HandlerFunc[*router.Context]) handler.HandlerFunc[*router.Context] {
	if a.limiter == nil {
		return h
	}
	return handler.Chain([]handler.Middleware[*router.Context]{
		middleware.RateLimit[*router.Context](middleware.RateLimitConfig{
			Limiter:    a.limiter,
			Scope:      scope,
			SetHeaders: true,
		}),
	}, h)
}

// handleError renders err as JSON. Panics are logged here with their stack
// since they bypass the logging middleware.
func (a *App) handleError(ctx *router.Context, err error) {
	var pe router.PanicError
	if errors.As(err, &pe) {
		a.logger.ErrorContext(ctx, "handler panic",
			logger.Error(err),
			logger.Path(ctx.Request().URL.Path),
			slog.String("stack", string(pe.Stack())))
	}
	response.JSONErrorHandler(ctx, err)
}
