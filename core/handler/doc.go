// Package handler defines the request processing contract shared by the
// router, middleware and application handlers.
//
// A handler never writes to the connection directly. It returns a Response
// closure which the router executes; a non-nil error from that closure is
// routed to the configured ErrorHandler:
//
//	func listTop(ctx *router.Context) handler.Response {
//		entries, err := engine.Top(ctx, 20)
//		if err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(entries)
//	}
//
// Middleware wraps a HandlerFunc and may decorate the Response it returns,
// for example to add headers after the inner handler has run.
package handler
