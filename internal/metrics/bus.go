// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BusPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_bus_published_total",
		Help: "Total number of progress messages published by backend",
	}, []string{"backend"})

	BusDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_bus_dropped_total",
		Help: "Total number of bus message drops by topic class and reason",
	}, []string{"topic", "reason"})

	BusSubscribers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vidmux_bus_subscribers",
		Help: "Current number of bus subscribers",
	}, []string{"backend"})
)

// IncBusDropReason records a dropped bus message with a concrete reason.
// Per-download topics collapse into one label value to keep cardinality bounded.
func IncBusDropReason(topic, reason string) {
	if topic == "" {
		topic = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	BusDroppedTotal.WithLabelValues(topic, reason).Inc()
}
