// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

// mergeEnv applies VIDMUX_* overrides on top of file and default values.
func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = l.envString("VIDMUX_LOG_LEVEL", cfg.LogLevel)

	s := &cfg.Server
	s.ListenAddr = l.envString("VIDMUX_LISTEN", s.ListenAddr)
	s.ReadTimeout = l.envDuration("VIDMUX_READ_TIMEOUT", s.ReadTimeout)
	s.IdleTimeout = l.envDuration("VIDMUX_IDLE_TIMEOUT", s.IdleTimeout)
	s.ShutdownTimeout = l.envDuration("VIDMUX_SHUTDOWN_TIMEOUT", s.ShutdownTimeout)
	s.StaticDir = l.envString("VIDMUX_STATIC_DIR", s.StaticDir)
	s.MaxConcurrent = l.envInt("VIDMUX_MAX_CONCURRENT", s.MaxConcurrent)
	s.Heartbeat = l.envDuration("VIDMUX_SSE_HEARTBEAT", s.Heartbeat)
	s.RateLimit.Enabled = l.envBool("VIDMUX_RATELIMIT_ENABLED", s.RateLimit.Enabled)
	s.RateLimit.InfoRPM = l.envInt("VIDMUX_RATELIMIT_INFO_RPM", s.RateLimit.InfoRPM)
	s.RateLimit.DownloadRPM = l.envInt("VIDMUX_RATELIMIT_DOWNLOAD_RPM", s.RateLimit.DownloadRPM)

	o := &cfg.Output
	o.Dir = l.envString("VIDMUX_OUTPUT_DIR", o.Dir)
	o.Retention = l.envDuration("VIDMUX_OUTPUT_RETENTION", o.Retention)
	o.SweepInterval = l.envDuration("VIDMUX_OUTPUT_SWEEP_INTERVAL", o.SweepInterval)

	e := &cfg.Extractor
	e.Bin = l.envString("VIDMUX_EXTRACTOR_BIN", e.Bin)
	e.UserAgent = l.envString("VIDMUX_USER_AGENT", e.UserAgent)
	e.InfoTimeout = l.envDuration("VIDMUX_INFO_TIMEOUT", e.InfoTimeout)
	e.AttemptTimeout = l.envDuration("VIDMUX_ATTEMPT_TIMEOUT", e.AttemptTimeout)
	e.MaxAttempts = l.envInt("VIDMUX_MAX_ATTEMPTS", e.MaxAttempts)
	e.RetryDelay = l.envDuration("VIDMUX_RETRY_DELAY", e.RetryDelay)
	e.MergeFormat = l.envString("VIDMUX_MERGE_FORMAT", e.MergeFormat)
	e.AudioBitrate = l.envString("VIDMUX_AUDIO_BITRATE", e.AudioBitrate)
	e.SpawnRate = l.envFloat("VIDMUX_EXTRACTOR_SPAWN_RATE", e.SpawnRate)
	e.SpawnBurst = l.envInt("VIDMUX_EXTRACTOR_SPAWN_BURST", e.SpawnBurst)

	t := &cfg.Transcoder
	t.Bin = l.envString("VIDMUX_TRANSCODER_BIN", t.Bin)
	t.Comment = l.envString("VIDMUX_METADATA_COMMENT", t.Comment)
	t.ThumbnailTimeout = l.envDuration("VIDMUX_THUMBNAIL_TIMEOUT", t.ThumbnailTimeout)
	t.EmbedTimeout = l.envDuration("VIDMUX_EMBED_TIMEOUT", t.EmbedTimeout)

	cfg.Bus.Backend = l.envString("VIDMUX_BUS_BACKEND", cfg.Bus.Backend)
	cfg.Bus.RedisAddr = l.envString("VIDMUX_BUS_REDIS_ADDR", cfg.Bus.RedisAddr)
	cfg.Bus.PublishTimeout = l.envDuration("VIDMUX_BUS_PUBLISH_TIMEOUT", cfg.Bus.PublishTimeout)

	cfg.Store.Backend = l.envString("VIDMUX_STORE_BACKEND", cfg.Store.Backend)
	cfg.Store.Path = l.envString("VIDMUX_STORE_PATH", cfg.Store.Path)

	cfg.Cache.Backend = l.envString("VIDMUX_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.TTL = l.envDuration("VIDMUX_CACHE_TTL", cfg.Cache.TTL)
	cfg.Cache.RedisAddr = l.envString("VIDMUX_CACHE_REDIS_ADDR", cfg.Cache.RedisAddr)
	cfg.Cache.Path = l.envString("VIDMUX_CACHE_PATH", cfg.Cache.Path)

	tel := &cfg.Telemetry
	tel.Enabled = l.envBool("VIDMUX_TELEMETRY_ENABLED", tel.Enabled)
	tel.Exporter = l.envString("VIDMUX_TELEMETRY_EXPORTER", tel.Exporter)
	tel.Endpoint = l.envString("VIDMUX_TELEMETRY_ENDPOINT", tel.Endpoint)
	tel.SamplingRate = l.envFloat("VIDMUX_TELEMETRY_SAMPLING_RATE", tel.SamplingRate)
}
