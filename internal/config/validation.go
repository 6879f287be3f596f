// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"math"
	"time"

	"github.com/ManuGH/vidmux/internal/validate"
)

// Validate validates an AppConfig using the centralized validation package
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.LogLevel("LogLevel", cfg.LogLevel)
	v.ListenAddr("Server.ListenAddr", cfg.Server.ListenAddr)
	v.NonNegative("Server.MaxConcurrent", cfg.Server.MaxConcurrent)
	if cfg.Server.StaticDir != "" {
		v.Directory("Server.StaticDir", cfg.Server.StaticDir, true)
	}
	if cfg.Server.RateLimit.Enabled {
		v.Positive("Server.RateLimit.InfoRPM", cfg.Server.RateLimit.InfoRPM)
		v.Positive("Server.RateLimit.DownloadRPM", cfg.Server.RateLimit.DownloadRPM)
	}

	v.Directory("Output.Dir", cfg.Output.Dir, false)
	if cfg.Output.Retention > 0 {
		v.DurationRange("Output.SweepInterval", cfg.Output.SweepInterval, time.Second, 24*time.Hour)
	}

	v.NotEmpty("Extractor.Bin", cfg.Extractor.Bin)
	v.NotEmpty("Extractor.UserAgent", cfg.Extractor.UserAgent)
	v.Range("Extractor.MaxAttempts", cfg.Extractor.MaxAttempts, 1, 10)
	v.DurationRange("Extractor.AttemptTimeout", cfg.Extractor.AttemptTimeout, time.Second, 6*time.Hour)
	v.DurationRange("Extractor.InfoTimeout", cfg.Extractor.InfoTimeout, time.Second, time.Hour)
	v.DurationRange("Extractor.RetryDelay", cfg.Extractor.RetryDelay, 0, 5*time.Minute)
	v.OneOf("Extractor.MergeFormat", cfg.Extractor.MergeFormat, []string{"mp4", "mkv", "webm", "mov"})
	v.NotEmpty("Extractor.AudioBitrate", cfg.Extractor.AudioBitrate)
	if cfg.Extractor.SpawnRate < 0 || math.IsNaN(cfg.Extractor.SpawnRate) {
		v.AddError("Extractor.SpawnRate", "must be >= 0", cfg.Extractor.SpawnRate)
	}

	v.NotEmpty("Transcoder.Bin", cfg.Transcoder.Bin)
	v.DurationRange("Transcoder.ThumbnailTimeout", cfg.Transcoder.ThumbnailTimeout, time.Second, 5*time.Minute)

	v.OneOf("Bus.Backend", cfg.Bus.Backend, []string{"memory", "redis"})
	if cfg.Bus.Backend == "redis" {
		v.NotEmpty("Bus.RedisAddr", cfg.Bus.RedisAddr)
	}

	v.OneOf("Store.Backend", cfg.Store.Backend, []string{"memory", "sqlite"})
	if cfg.Store.Backend == "sqlite" {
		v.NotEmpty("Store.Path", cfg.Store.Path)
	}

	v.OneOf("Cache.Backend", cfg.Cache.Backend, []string{"none", "memory", "redis", "badger"})
	switch cfg.Cache.Backend {
	case "redis":
		v.NotEmpty("Cache.RedisAddr", cfg.Cache.RedisAddr)
	case "badger":
		v.NotEmpty("Cache.Path", cfg.Cache.Path)
	}

	if cfg.Telemetry.Enabled {
		v.OneOf("Telemetry.Exporter", cfg.Telemetry.Exporter, []string{"grpc", "http"})
		v.NotEmpty("Telemetry.Endpoint", cfg.Telemetry.Endpoint)
		if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
			v.AddError("Telemetry.SamplingRate", "must be between 0 and 1", cfg.Telemetry.SamplingRate)
		}
	}

	return v.Err()
}
