package logger

import (
	"log/slog"
	"time"
)

// Error is err under "error", or nothing for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr { return slog.String("component", name) }

// Event names what happened, for records that share a message.
func Event(name string) slog.Attr { return slog.String("event", name) }

// Count is n under key, e.g. Count("removed", 3).
func Count(key string, n int) slog.Attr { return slog.Int(key, n) }

// Duration is d under "duration".
func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

// Elapsed is the time since start under "elapsed".
func Elapsed(start time.Time) slog.Attr { return slog.Duration("elapsed", time.Since(start)) }

// Request attributes.

func Method(method string) slog.Attr { return slog.String("method", method) }
func Path(path string) slog.Attr     { return slog.String("path", path) }
func StatusCode(code int) slog.Attr  { return slog.Int("status", code) }
func RequestID(id string) slog.Attr  { return optionalString("request_id", id) }
func ClientIP(ip string) slog.Attr   { return optionalString("client_ip", ip) }

// Leaderboard attributes.

// EntryID is a leaderboard entry id under "entry_id".
func EntryID(id int64) slog.Attr { return slog.Int64("entry_id", id) }

// Score is a submitted or stored score under "score".
func Score(score int64) slog.Attr { return slog.Int64("score", score) }

// Cutoff is the lowest retained score a submission had to beat.
func Cutoff(score int64) slog.Attr { return slog.Int64("cutoff", score) }

func optionalString(key, value string) slog.Attr {
	if value == "" {
		return slog.Attr{}
	}
	return slog.String(key, value)
}
