// Package server runs an http.Handler with graceful shutdown.
//
// Run returns a func() error so the server can join an errgroup next to
// other long-running workers:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	g.Go(sessions.Run(ctx))
//	return g.Wait()
package server
