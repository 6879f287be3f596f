// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthcheck(t *testing.T) {
	var notReady atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/readyz" && notReady.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	addr := strings.TrimPrefix(srv.URL, "http://")

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, healthcheck([]string{"-addr", addr}, &out, &errOut))
	assert.Contains(t, out.String(), "ready")

	notReady.Store(true)
	assert.Equal(t, 1, healthcheck([]string{"-addr", addr}, &out, &errOut))
	assert.Equal(t, 0, healthcheck([]string{"-addr", addr, "-mode", "live"}, &out, &errOut))
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("logLevel: debug\nserver:\n  maxConcurrent: 2\n"), 0o600))
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [not, a, map]\n"), 0o600))

	var out, errOut bytes.Buffer
	assert.Equal(t, 0, configCLI([]string{"validate", "-f", good}, &out, &errOut))
	assert.Contains(t, out.String(), "is valid")

	assert.Equal(t, 1, configCLI([]string{"validate", "-f", bad}, &out, &errOut))
	assert.Equal(t, 2, configCLI([]string{"validate"}, &out, &errOut))
	assert.Equal(t, 2, configCLI([]string{"explode"}, &out, &errOut))
}

func TestConfigDumpJSON(t *testing.T) {
	var out, errOut bytes.Buffer
	require.Equal(t, 0, configCLI([]string{"dump", "--format", "json"}, &out, &errOut), errOut.String())
	assert.Contains(t, out.String(), `"ListenAddr"`)
	assert.Equal(t, 2, configCLI([]string{"dump", "--format", "toml"}, &out, &errOut))
}
