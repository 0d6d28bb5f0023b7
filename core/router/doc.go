// Package router dispatches requests to typed handlers.
//
// Routes are registered per method on top of http.ServeMux patterns, so path
// wildcards use the standard library syntax. Every routed request gets a
// context built by the configured factory, runs through the middleware stack,
// and has its Response executed with panics recovered. Errors, panics and
// unmatched routes all go to one error handler:
//
//	r := router.New[*router.Context](
//		router.WithErrorHandler(response.JSONErrorHandler[*router.Context]),
//	)
//	r.Use(middleware.RequestID[*router.Context]())
//	r.Get("/api/leaderboard", listTop)
package router
