// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InfoCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_info_cache_total",
		Help: "Info cache lookups by backend and result",
	}, []string{"backend", "result"})

	RetentionRemovedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_retention_removed_total",
		Help: "Items removed by the retention sweeper by kind",
	}, []string{"kind"})
)

// IncCache records a cache lookup result ("hit", "miss", "error").
func IncCache(backend, result string) {
	InfoCacheTotal.WithLabelValues(backend, result).Inc()
}
