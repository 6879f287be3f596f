// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockChecker struct {
	name   string
	status Status
}

func (m *mockChecker) Name() string { return m.name }

func (m *mockChecker) Check(context.Context) CheckResult {
	return CheckResult{Status: m.status}
}

func TestManager_Health_NoCheckers(t *testing.T) {
	m := NewManager("v1.0.0")

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "v1.0.0", resp.Version)
	assert.GreaterOrEqual(t, resp.Uptime, int64(0))
	assert.Nil(t, resp.Checks)
}

func TestManager_Health_WithCheckers(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "healthy", status: StatusHealthy})
	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusDegraded, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestManager_Ready(t *testing.T) {
	m := NewManager("v1.0.0")
	assert.True(t, m.Ready(context.Background()).Ready)

	m.RegisterChecker(&mockChecker{name: "degraded", status: StatusDegraded})
	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusDegraded, resp.Status)

	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestServeReady(t *testing.T) {
	m := NewManager("v1.0.0")
	m.RegisterChecker(&mockChecker{name: "down", status: StatusUnhealthy})

	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Equal(t, StatusUnhealthy, body.Checks["down"].Status)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBinaryChecker(t *testing.T) {
	assert.Equal(t, StatusHealthy, NewBinaryChecker("sh", "sh").Check(context.Background()).Status)
	res := NewBinaryChecker("missing", "definitely-not-a-binary-xyz").Check(context.Background())
	assert.Equal(t, StatusUnhealthy, res.Status)
	assert.NotEmpty(t, res.Error)
}

func TestDirChecker(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, StatusHealthy, NewDirChecker("out", dir).Check(context.Background()).Status)

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.Equal(t, StatusUnhealthy, NewDirChecker("out", file).Check(context.Background()).Status)
	assert.Equal(t, StatusUnhealthy, NewDirChecker("out", filepath.Join(dir, "nope")).Check(context.Background()).Status)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "write probe must clean up after itself")
}

func TestPingChecker(t *testing.T) {
	fail := func(context.Context) error { return errors.New("connection refused") }
	assert.Equal(t, StatusUnhealthy, NewPingChecker("store", fail, false).Check(context.Background()).Status)
	assert.Equal(t, StatusDegraded, NewPingChecker("redis", fail, true).Check(context.Background()).Status)
	ok := func(context.Context) error { return nil }
	assert.Equal(t, StatusHealthy, NewPingChecker("store", ok, false).Check(context.Background()).Status)
}

func TestPerformStartupChecks(t *testing.T) {
	cfg := config.Defaults()
	cfg.Output.Dir = filepath.Join(t.TempDir(), "out")
	cfg.Extractor.Bin = "sh"
	cfg.Transcoder.Bin = "sh"
	require.NoError(t, PerformStartupChecks(context.Background(), cfg))
	assert.DirExists(t, cfg.Output.Dir)

	cfg.Transcoder.Bin = "definitely-not-a-binary-xyz"
	require.Error(t, PerformStartupChecks(context.Background(), cfg))
}
