package middleware

import (
	"maps"
	"net/http"

	"github.com/dmitrymomot/leaderboard/core/handler"
)

// SecurityHeadersConfig configures the security headers middleware.
// Empty fields are not sent.
type SecurityHeadersConfig struct {
	Skip func(ctx handler.Context) bool

	ContentTypeOptions      string
	FrameOptions            string
	ReferrerPolicy          string
	ContentSecurityPolicy   string
	StrictTransportSecurity string

	CustomHeaders map[string]string
}

// APISecurityHeaders suits a JSON API that is never framed or rendered.
var APISecurityHeaders = SecurityHeadersConfig{
	ContentTypeOptions:    "nosniff",
	FrameOptions:          "DENY",
	ReferrerPolicy:        "no-referrer",
	ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
}

// DefaultHSTS is sent when HSTS is enabled without a custom value.
const DefaultHSTS = "max-age=31536000; includeSubDomains"

// SecurityHeaders sets APISecurityHeaders without HSTS.
func SecurityHeaders[C handler.Context]() handler.Middleware[C] {
	return SecurityHeadersWithConfig[C](APISecurityHeaders)
}

// SecurityHeadersWithConfig sets the configured headers before the handler
// renders, so handlers may still override them.
func SecurityHeadersWithConfig[C handler.Context](cfg SecurityHeadersConfig) handler.Middleware[C] {
	headers := map[string]string{
		"X-Content-Type-Options":    cfg.ContentTypeOptions,
		"X-Frame-Options":           cfg.FrameOptions,
		"Referrer-Policy":           cfg.ReferrerPolicy,
		"Content-Security-Policy":   cfg.ContentSecurityPolicy,
		"Strict-Transport-Security": cfg.StrictTransportSecurity,
	}
	maps.Copy(headers, cfg.CustomHeaders)
	maps.DeleteFunc(headers, func(_, v string) bool { return v == "" })

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			resp := next(ctx)
			return func(w http.ResponseWriter, r *http.Request) error {
				h := w.Header()
				for k, v := range headers {
					h.Set(k, v)
				}
				return resp(w, r)
			}
		}
	}
}
