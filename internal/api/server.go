// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api is the browser facing HTTP surface: info lookups, downloads,
// progress streams and file serving.
package api

import (
	"context"
	"net/http"

	"github.com/ManuGH/vidmux/internal/api/middleware"
	"github.com/ManuGH/vidmux/internal/bus"
	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/download"
	"github.com/ManuGH/vidmux/internal/formats"
	"github.com/ManuGH/vidmux/internal/health"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InfoSource extracts video metadata.
type InfoSource interface {
	Info(ctx context.Context, sourceURL string) (formats.VideoInfo, error)
}

// Downloader runs downloads and reports their records.
type Downloader interface {
	Run(ctx context.Context, req download.Request) (download.Result, error)
	Record(ctx context.Context, id string) (store.Record, error)
}

// ProgressSource opens progress subscriptions. An empty id follows all
// downloads.
type ProgressSource interface {
	Subscribe(ctx context.Context, downloadID string) (bus.Subscriber, error)
}

// Deps are the collaborators the handlers call into.
type Deps struct {
	Info      InfoSource
	Downloads Downloader
	Progress  ProgressSource
	Health    *health.Manager
}

// Server owns the router.
type Server struct {
	cfg    config.AppConfig
	deps   Deps
	router chi.Router

	// streams ends open progress streams on shutdown.
	streams     context.Context
	stopStreams context.CancelFunc
}

// NewServer builds the router for cfg.
func NewServer(cfg config.AppConfig, deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager(cfg.Version)
	}
	s := &Server{cfg: cfg, deps: deps}
	s.streams, s.stopStreams = context.WithCancel(context.Background())
	s.router = s.routes()
	return s
}

// CloseStreams ends all open progress streams. http.Server.Shutdown does not
// interrupt active handlers, so this is registered as a shutdown callback.
func (s *Server) CloseStreams() {
	s.stopStreams()
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	tracing := ""
	if s.cfg.Telemetry.Enabled {
		tracing = "vidmux"
	}
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        tracing,
		EnableLogging:         true,
	})

	rl := s.cfg.Server.RateLimit
	infoLimit, downloadLimit := 0, 0
	if rl.Enabled {
		infoLimit, downloadLimit = rl.InfoRPM, rl.DownloadRPM
	}

	r.With(middleware.PerMinute("/info", infoLimit)).Post("/info", s.handleInfo)
	r.With(middleware.PerMinute("/download", downloadLimit)).Post("/download", s.handleDownload)
	r.Get("/download/progress", s.handleProgress)
	r.Get("/downloads/{id}", s.handleRecord)
	r.Get("/files/{name}", s.handleFile)
	r.Head("/files/{name}", s.handleFile)

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", serveOpenAPI)

	if dir := s.cfg.Server.StaticDir; dir != "" {
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}
	return r
}
