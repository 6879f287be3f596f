// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/go-chi/chi/v5"
)

// Metrics records request latency by route pattern.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			mw := &metricsWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(mw, r)

			// Route patterns keep label cardinality bounded.
			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			metrics.HTTPRequestDuration.
				WithLabelValues(r.Method, route, strconv.Itoa(mw.statusCode)).
				Observe(time.Since(start).Seconds())
		})
	}
}

// metricsWriter wraps http.ResponseWriter to capture the status code.
type metricsWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (mw *metricsWriter) WriteHeader(statusCode int) {
	if !mw.written {
		mw.statusCode = statusCode
		mw.written = true
	}
	mw.ResponseWriter.WriteHeader(statusCode)
}

func (mw *metricsWriter) Write(b []byte) (int, error) {
	if !mw.written {
		mw.WriteHeader(http.StatusOK)
	}
	return mw.ResponseWriter.Write(b)
}

// Flush keeps server-sent event streams working through the wrapper.
func (mw *metricsWriter) Flush() {
	if f, ok := mw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (mw *metricsWriter) Unwrap() http.ResponseWriter {
	return mw.ResponseWriter
}
