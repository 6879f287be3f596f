// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import "time"

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Version  string `yaml:"-"`
	LogLevel string `yaml:"logLevel"`

	Server     ServerConfig     `yaml:"server"`
	Output     OutputConfig     `yaml:"output"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Transcoder TranscoderConfig `yaml:"transcoder"`
	Bus        BusConfig        `yaml:"bus"`
	Store      StoreConfig      `yaml:"store"`
	Cache      CacheConfig      `yaml:"cache"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type ServerConfig struct {
	ListenAddr      string          `yaml:"listenAddr"`
	ReadTimeout     time.Duration   `yaml:"readTimeout"`
	IdleTimeout     time.Duration   `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration   `yaml:"shutdownTimeout"`
	StaticDir       string          `yaml:"staticDir"`
	MaxConcurrent   int             `yaml:"maxConcurrent"`
	Heartbeat       time.Duration   `yaml:"heartbeat"`
	RateLimit       RateLimitConfig `yaml:"rateLimit"`
}

type RateLimitConfig struct {
	Enabled     bool `yaml:"enabled"`
	InfoRPM     int  `yaml:"infoRPM"`
	DownloadRPM int  `yaml:"downloadRPM"`
}

type OutputConfig struct {
	Dir           string        `yaml:"dir"`
	Retention     time.Duration `yaml:"retention"`
	SweepInterval time.Duration `yaml:"sweepInterval"`
}

type ExtractorConfig struct {
	Bin            string        `yaml:"bin"`
	UserAgent      string        `yaml:"userAgent"`
	InfoTimeout    time.Duration `yaml:"infoTimeout"`
	AttemptTimeout time.Duration `yaml:"attemptTimeout"`
	MaxAttempts    int           `yaml:"maxAttempts"`
	RetryDelay     time.Duration `yaml:"retryDelay"`
	MergeFormat    string        `yaml:"mergeFormat"`
	AudioBitrate   string        `yaml:"audioBitrate"`
	SpawnRate      float64       `yaml:"spawnRate"` // spawns per second, 0 disables
	SpawnBurst     int           `yaml:"spawnBurst"`
}

type TranscoderConfig struct {
	Bin              string        `yaml:"bin"`
	Comment          string        `yaml:"comment"`
	ThumbnailTimeout time.Duration `yaml:"thumbnailTimeout"`
	EmbedTimeout     time.Duration `yaml:"embedTimeout"`
}

type BusConfig struct {
	Backend        string        `yaml:"backend"` // memory | redis
	RedisAddr      string        `yaml:"redisAddr"`
	PublishTimeout time.Duration `yaml:"publishTimeout"`
}

type StoreConfig struct {
	Backend string `yaml:"backend"` // memory | sqlite
	Path    string `yaml:"path"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"` // none | memory | redis | badger
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redisAddr"`
	Path      string        `yaml:"path"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // grpc | http
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}
