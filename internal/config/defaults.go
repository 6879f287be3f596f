// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// DefaultUserAgent is a current desktop browser string; some sites refuse
// the extractor's own identifier.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel: "info",
		Server: ServerConfig{
			ListenAddr:      ":8080",
			ReadTimeout:     30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			MaxConcurrent:   4,
			Heartbeat:       15 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:     true,
				InfoRPM:     60,
				DownloadRPM: 10,
			},
		},
		Output: OutputConfig{
			Dir:           "downloads",
			Retention:     24 * time.Hour,
			SweepInterval: 10 * time.Minute,
		},
		Extractor: ExtractorConfig{
			Bin:            "yt-dlp",
			UserAgent:      DefaultUserAgent,
			InfoTimeout:    2 * time.Minute,
			AttemptTimeout: 15 * time.Minute,
			MaxAttempts:    3,
			RetryDelay:     3 * time.Second,
			MergeFormat:    "mp4",
			AudioBitrate:   "192k",
			SpawnRate:      2,
			SpawnBurst:     4,
		},
		Transcoder: TranscoderConfig{
			Bin:              "ffmpeg",
			Comment:          "Downloaded with vidmux",
			ThumbnailTimeout: 15 * time.Second,
			EmbedTimeout:     5 * time.Minute,
		},
		Bus: BusConfig{
			Backend:        "memory",
			PublishTimeout: time.Second,
		},
		Store: StoreConfig{
			Backend: "memory",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     10 * time.Minute,
		},
		Telemetry: TelemetryConfig{
			Exporter:     "grpc",
			SamplingRate: 1.0,
		},
	}
}
