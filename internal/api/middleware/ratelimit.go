// SPDX-License-Identifier: MIT

package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	// Route labels rejections in metrics.
	Route string
	// RequestLimit is the maximum number of requests allowed in the window
	RequestLimit int
	// WindowSize is the time window for rate limiting
	WindowSize time.Duration
	// KeyFunc extracts the rate limit key from the request. Defaults to the client IP.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit creates a sliding window rate limiter. A non-positive limit
// disables it.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.RequestLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = time.Minute
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.HTTPRateLimitedTotal.WithLabelValues(cfg.Route).Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(cfg.WindowSize.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too many requests. Please try again later."}`))
		}),
	)
}

// PerMinute limits requests per client IP per minute.
func PerMinute(route string, rpm int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{Route: route, RequestLimit: rpm, WindowSize: time.Minute})
}
