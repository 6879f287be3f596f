// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProcExitsTotal counts subprocess exits by tool and exit code.
	ProcExitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_process_exits_total",
		Help: "Total number of external tool exits by tool and code",
	}, []string{"tool", "code"})

	procTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_process_terminate_total",
		Help: "Signals delivered to external tool process groups",
	}, []string{"signal", "result"})

	procWaitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vidmux_process_wait_total",
		Help: "Process wait results after termination",
	}, []string{"result"})

	ExtractorThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vidmux_extractor_throttled_total",
		Help: "Extractor spawns that waited on the spawn limiter",
	})
)

// IncProcExit records an exit of the named tool.
func IncProcExit(tool string, code int) {
	ProcExitsTotal.WithLabelValues(tool, strconv.Itoa(code)).Inc()
}

// IncProcTerminate records a termination signal.
func IncProcTerminate(signal, result string) {
	procTerminateTotal.WithLabelValues(signal, result).Inc()
}

// IncProcWait records a post-termination wait result.
func IncProcWait(result string) {
	procWaitTotal.WithLabelValues(result).Inc()
}
