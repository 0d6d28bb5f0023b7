// Package health provides liveness and readiness handlers.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "sqlite", Fn: sqlite.Healthcheck(db)},
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	))
package health
