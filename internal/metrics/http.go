// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidmux_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	HTTPRateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"route"})

	FileRequestDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_file_request_denied_total",
		Help: "Output file requests denied by reason",
	}, []string{"reason"})

	ProgressStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidmux_progress_streams",
		Help: "Open server-sent event progress streams",
	})
)
