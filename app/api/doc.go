// Package api serves the leaderboard over HTTP.
//
// Routes:
//
//	POST /api/session           issue a one-time session token
//	GET  /api/leaderboard       ranked entries, ?limit clamped to [1, 100]
//	POST /api/leaderboard       submit {"name", "score", "token"}
//	GET  /api/leaderboard/live  websocket stream of the ranked list
//	GET  /health/live           liveness
//	GET  /health/ready          readiness of storage and session store
//
// Errors are JSON objects with "code" and "message". A submission is checked
// for a usable name and score before its token is consumed.
package api
