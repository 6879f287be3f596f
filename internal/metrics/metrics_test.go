// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromhttpExposure(t *testing.T) {
	metrics.RecordAttempt("success", 1.5)

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "vidmux_download_attempts_total"))
}

func TestIncBusDropReasonDefaultsLabels(t *testing.T) {
	before := testutil.ToFloat64(metrics.BusDroppedTotal.WithLabelValues("unknown", "unknown"))
	metrics.IncBusDropReason("", "")
	after := testutil.ToFloat64(metrics.BusDroppedTotal.WithLabelValues("unknown", "unknown"))
	assert.Equal(t, before+1, after)
}

func TestIncProcExit(t *testing.T) {
	before := testutil.ToFloat64(metrics.ProcExitsTotal.WithLabelValues("extractor", "2"))
	metrics.IncProcExit("extractor", 2)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ProcExitsTotal.WithLabelValues("extractor", "2")))
}
