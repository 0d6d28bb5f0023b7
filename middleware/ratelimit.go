package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/leaderboard/core/handler"
	"github.com/dmitrymomot/leaderboard/core/response"
	"github.com/dmitrymomot/leaderboard/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	Skip    func(ctx handler.Context) bool
	Limiter ratelimiter.RateLimiter
	// Scope prefixes bucket keys so routes sharing a limiter keep separate
	// budgets per client.
	Scope string
	// Key identifies the client. Defaults to the ClientIP value, falling back
	// to RemoteAddr.
	Key func(ctx handler.Context) string
	// SetHeaders adds X-RateLimit-* headers to every limited response.
	SetHeaders bool
}

// RateLimit answers 429 too_many_requests, with a Retry-After header and a
// retry_after detail in seconds, once a client's bucket is empty.
// Panics if no limiter is provided.
func RateLimit[C handler.Context](cfg RateLimitConfig) handler.Middleware[C] {
	if cfg.Limiter == nil {
		panic("middleware: RateLimit requires a limiter")
	}
	if cfg.Key == nil {
		cfg.Key = clientKey
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			key := cfg.Key(ctx)
			if cfg.Scope != "" {
				key = cfg.Scope + ":" + key
			}

			result, err := cfg.Limiter.Allow(ctx, key)
			if err != nil {
				return response.Error(fmt.Errorf("rate limit %q: %w", cfg.Scope, err))
			}

			var resp handler.Response
			retryAfter := retrySeconds(result)
			if result.Allowed() {
				resp = next(ctx)
			} else {
				resp = response.Error(response.ErrTooManyRequests.WithDetails(map[string]any{
					"retry_after": retryAfter,
				}))
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				h := w.Header()
				if cfg.SetHeaders {
					h.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
					h.Set("X-RateLimit-Remaining", strconv.Itoa(max(result.Remaining, 0)))
					h.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
				}
				if !result.Allowed() {
					h.Set("Retry-After", strconv.Itoa(retryAfter))
				}
				return resp(w, r)
			}
		}
	}
}

func clientKey(ctx handler.Context) string {
	if ip, ok := GetClientIP(ctx); ok {
		return ip
	}
	return ctx.Request().RemoteAddr
}

// retrySeconds rounds up so clients never retry before the refill.
func retrySeconds(result *ratelimiter.Result) int {
	if result.Allowed() {
		return 0
	}
	return max(int(math.Ceil(result.RetryAfter().Seconds())), 1)
}
