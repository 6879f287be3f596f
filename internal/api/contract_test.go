// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/download"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/stretchr/testify/require"
)

var (
	openapiOnce sync.Once
	openapiDoc  *openapi3.T
	openapiErr  error
)

func loadOpenAPIDoc(t *testing.T) *openapi3.T {
	t.Helper()
	openapiOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(OpenAPISpec)
		if err != nil {
			openapiErr = err
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			openapiErr = err
			return
		}
		openapiDoc = doc
	})
	if openapiErr != nil {
		t.Fatalf("openapi load failed: %v", openapiErr)
	}
	return openapiDoc
}

func validateOpenAPIResponse(t *testing.T, doc *openapi3.T, req *http.Request, rr *httptest.ResponseRecorder) {
	t.Helper()
	router, err := legacy.NewRouter(doc)
	require.NoError(t, err, "openapi router init")

	route, pathParams, err := router.FindRoute(req)
	require.NoError(t, err, "openapi route lookup")

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: rr.Code,
		Header: rr.Header(),
	}
	input.SetBodyBytes(rr.Body.Bytes())

	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "openapi response validation")
}

func (h *harness) contract(t *testing.T, method, path, body string, wantStatus int) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rr, req)
	require.Equal(t, wantStatus, rr.Code, rr.Body.String())
	validateOpenAPIResponse(t, loadOpenAPIDoc(t), req, rr)
}

func TestContractInfo(t *testing.T) {
	h := newHarness(t)
	h.contract(t, http.MethodPost, "/info", `{"url":"https://videos.example.com/x"}`, http.StatusOK)
	h.contract(t, http.MethodPost, "/info", `{"url":"nope"}`, http.StatusBadRequest)

	h.info.err = errors.New("ERROR: private video")
	h.contract(t, http.MethodPost, "/info", `{"url":"https://videos.example.com/x"}`, http.StatusInternalServerError)
}

func TestContractDownload(t *testing.T) {
	h := newHarness(t)
	h.dl.result = download.Result{ID: "abc", Filename: "abc.mp4", Attempts: 1}
	h.contract(t, http.MethodPost, "/download", `{"url":"https://videos.example.com/x"}`, http.StatusOK)

	h.dl.err = download.ErrBusy
	h.contract(t, http.MethodPost, "/download", `{"url":"https://videos.example.com/x"}`, http.StatusServiceUnavailable)
}

func TestContractDownloadRecord(t *testing.T) {
	h := newHarness(t)
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	h.dl.records["abc"] = store.Record{
		ID: "abc", URL: "https://videos.example.com/x", State: store.StateFailed,
		Attempts: 3, LastError: "exit status 1", CreatedAt: now, UpdatedAt: now.Add(time.Minute),
	}
	h.contract(t, http.MethodGet, "/downloads/abc", "", http.StatusOK)
	h.contract(t, http.MethodGet, "/downloads/zzz", "", http.StatusNotFound)
}

func TestContractRateLimited(t *testing.T) {
	h := newHarness(t, func(cfg *config.AppConfig) {
		cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, InfoRPM: 1, DownloadRPM: 1}
	})
	h.contract(t, http.MethodPost, "/info", `{"url":"https://videos.example.com/x"}`, http.StatusOK)
	h.contract(t, http.MethodPost, "/info", `{"url":"https://videos.example.com/x"}`, http.StatusTooManyRequests)
}

func TestContractHealth(t *testing.T) {
	h := newHarness(t)
	h.contract(t, http.MethodGet, "/healthz", "", http.StatusOK)
	h.contract(t, http.MethodGet, "/readyz", "", http.StatusOK)
}
