// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DownloadsTotal counts finished downloads by terminal result.
	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_downloads_total",
		Help: "Total number of downloads by result",
	}, []string{"result"})

	// DownloadAttemptsTotal counts extractor attempts by outcome
	// (success, exit_nonzero, timeout, spawn_error, output_missing, canceled).
	DownloadAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_download_attempts_total",
		Help: "Total number of download attempts by outcome",
	}, []string{"outcome"})

	DownloadRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidmux_download_retries_total",
		Help: "Total number of download retries scheduled",
	})

	DownloadAttemptDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vidmux_download_attempt_duration_seconds",
		Help:    "Duration of a single download attempt",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 900},
	}, []string{"outcome"})

	DownloadsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vidmux_downloads_in_flight",
		Help: "Number of downloads currently running",
	})

	EmbedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_embed_total",
		Help: "Total number of metadata embed runs by result and cover art presence",
	}, []string{"result", "cover"})

	ThumbnailFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_thumbnail_fetch_total",
		Help: "Total number of remote thumbnail fetches by result",
	}, []string{"result"})
)

// RecordAttempt records one attempt outcome and its duration.
func RecordAttempt(outcome string, seconds float64) {
	DownloadAttemptsTotal.WithLabelValues(outcome).Inc()
	DownloadAttemptDuration.WithLabelValues(outcome).Observe(seconds)
}
