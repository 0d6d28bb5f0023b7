// Package middleware provides HTTP middleware for handler.Context routers.
//
// Every middleware follows the same shape: a default constructor, a
// WithConfig constructor taking a config struct with an optional Skip
// function, and, where it stores data, a Get helper reading it back from
// the context.
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.ClientIP[*router.Context](),
//		middleware.LoggingWithLogger[*router.Context](log),
//	)
//
//	limited := middleware.RateLimit[*router.Context](middleware.RateLimitConfig{Limiter: limiter})
//	r.Post("/api/session", handler.Chain([]handler.Middleware[*router.Context]{limited}, issue))
//
// RequestID tags requests with a UUID. ClientIP stores the peer address,
// optionally read from proxy headers. Logging writes one structured line per
// request. RateLimit applies a token bucket keyed by client IP. BodyLimit
// caps request body size.
package middleware
