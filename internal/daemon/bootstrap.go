// SPDX-License-Identifier: MIT

// Package daemon wires the runtime components and manages their lifecycle.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/ManuGH/vidmux/internal/api"
	"github.com/ManuGH/vidmux/internal/bus"
	"github.com/ManuGH/vidmux/internal/cache"
	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/download"
	"github.com/ManuGH/vidmux/internal/extractor"
	"github.com/ManuGH/vidmux/internal/health"
	"github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metadata"
	"github.com/ManuGH/vidmux/internal/process"
	"github.com/ManuGH/vidmux/internal/progress"
	"github.com/ManuGH/vidmux/internal/retention"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/ManuGH/vidmux/internal/telemetry"
)

// pinger is implemented by backends with a liveness probe.
type pinger interface {
	Ping(ctx context.Context) error
}

// Build performs startup checks and wires every component from the current
// config in holder. Resources opened by Build are released by the returned
// App's shutdown hooks.
func Build(ctx context.Context, holder *config.ConfigHolder) (app *App, err error) {
	cfg := holder.Get()
	logger := log.WithComponent("daemon")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		return nil, fmt.Errorf("startup checks: %w", err)
	}

	var hooks []namedHook
	defer func() {
		if err == nil {
			return
		}
		for i := len(hooks) - 1; i >= 0; i-- {
			_ = hooks[i].hook(context.WithoutCancel(ctx))
		}
	}()

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "vidmux",
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	hooks = append(hooks, namedHook{"telemetry", tel.Shutdown})

	events, err := bus.New(ctx, cfg.Bus, logger)
	if err != nil {
		return nil, fmt.Errorf("bus: %w", err)
	}
	hooks = append(hooks, namedHook{"bus", func(context.Context) error { return events.Close() }})

	infoCache, err := cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	hooks = append(hooks, namedHook{"cache", func(context.Context) error { return infoCache.Close() }})

	records, err := store.New(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	hooks = append(hooks, namedHook{"store", func(context.Context) error { return records.Close() }})

	runner := process.NewRunner()
	ex := extractor.New(extractor.Config{
		Bin:         cfg.Extractor.Bin,
		UserAgent:   cfg.Extractor.UserAgent,
		InfoTimeout: cfg.Extractor.InfoTimeout,
		CacheTTL:    cfg.Cache.TTL,
		SpawnRate:   cfg.Extractor.SpawnRate,
		SpawnBurst:  cfg.Extractor.SpawnBurst,
	}, runner, infoCache)
	embedder := metadata.NewEmbedder(metadata.Config{
		Bin:              cfg.Transcoder.Bin,
		Comment:          cfg.Transcoder.Comment,
		UserAgent:        cfg.Extractor.UserAgent,
		ThumbnailTimeout: cfg.Transcoder.ThumbnailTimeout,
		EmbedTimeout:     cfg.Transcoder.EmbedTimeout,
	}, runner)

	broadcaster := progress.NewBroadcaster(events, cfg.Bus.PublishTimeout)
	orch := download.NewOrchestrator(download.Config{
		OutputDir:      cfg.Output.Dir,
		TranscoderPath: resolveBinary(cfg.Transcoder.Bin),
		MergeFormat:    cfg.Extractor.MergeFormat,
		AudioBitrate:   cfg.Extractor.AudioBitrate,
		UserAgent:      cfg.Extractor.UserAgent,
		AttemptTimeout: cfg.Extractor.AttemptTimeout,
		MaxAttempts:    cfg.Extractor.MaxAttempts,
		RetryDelay:     cfg.Extractor.RetryDelay,
	}, ex, broadcaster, records)
	svc := download.NewService(orch, embedder, ex, broadcaster, cfg.Server.MaxConcurrent)

	hm := health.NewManager(cfg.Version)
	hm.RegisterChecker(health.NewBinaryChecker("extractor", cfg.Extractor.Bin))
	hm.RegisterChecker(health.NewBinaryChecker("transcoder", cfg.Transcoder.Bin))
	hm.RegisterChecker(health.NewDirChecker("output_dir", cfg.Output.Dir))
	hm.RegisterChecker(health.NewPingChecker("store", records.Ping, false))
	if p, ok := events.(pinger); ok {
		hm.RegisterChecker(health.NewPingChecker("bus", p.Ping, false))
	}
	if rc, ok := infoCache.(*cache.RedisCache); ok {
		hm.RegisterChecker(health.NewPingChecker("cache", rc.HealthCheck, true))
	}

	srv := api.NewServer(cfg, api.Deps{
		Info:      ex,
		Downloads: svc,
		Progress:  broadcaster,
		Health:    hm,
	})

	mgr, err := NewManager(cfg.Server, Deps{
		Logger:     logger,
		APIHandler: srv.Handler(),
		OnShutdown: []func(){srv.CloseStreams},
	})
	if err != nil {
		return nil, err
	}
	for _, h := range hooks {
		mgr.RegisterShutdownHook(h.name, h.hook)
	}

	var gc retention.GarbageCollector
	if g, ok := infoCache.(retention.GarbageCollector); ok {
		gc = g
	}
	sweeper := retention.NewSweeper(holder, records, gc)

	logger.Info().
		Str("output_dir", cfg.Output.Dir).
		Str("bus", cfg.Bus.Backend).
		Str("cache", infoCache.Name()).
		Str("store", cfg.Store.Backend).
		Int("max_concurrent", cfg.Server.MaxConcurrent).
		Msg("components wired")

	return NewApp(logger, mgr, holder, sweeper), nil
}

// resolveBinary returns the absolute path of bin when it is on PATH.
func resolveBinary(bin string) string {
	if p, err := exec.LookPath(bin); err == nil {
		return p
	}
	return bin
}

// WaitForShutdown returns a context cancelled on interrupt or termination.
func WaitForShutdown() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
