// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package extractor drives the yt-dlp binary: info extraction, download
// argument construction and progress line parsing.
package extractor

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/vidmux/internal/cache"
	"github.com/ManuGH/vidmux/internal/formats"
	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/ManuGH/vidmux/internal/process"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Tool is the label used for extractor runs in logs and metrics.
const Tool = "extractor"

// ErrMalformedInfo is returned when the info document is not valid JSON.
var ErrMalformedInfo = errors.New("malformed extractor info")

// Config controls how the extractor is invoked.
type Config struct {
	Bin         string
	UserAgent   string
	InfoTimeout time.Duration
	CacheTTL    time.Duration
	SpawnRate   float64 // spawns per second, 0 disables throttling
	SpawnBurst  int
}

// Client runs the extractor. Safe for concurrent use.
type Client struct {
	cfg     Config
	runner  *process.Runner
	cache   cache.Cache
	limiter *rate.Limiter
	group   singleflight.Group
	logger  zerolog.Logger
}

// New creates a Client. A nil cache disables info caching.
func New(cfg Config, runner *process.Runner, c cache.Cache) *Client {
	if runner == nil {
		runner = process.NewRunner()
	}
	if c == nil {
		c = cache.NewNoOpCache()
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.SpawnRate > 0 {
		burst := cfg.SpawnBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.SpawnRate), burst)
	}
	return &Client{
		cfg:     cfg,
		runner:  runner,
		cache:   c,
		limiter: limiter,
		logger:  xglog.WithComponent("extractor"),
	}
}

// Bin returns the configured extractor binary.
func (c *Client) Bin() string { return c.cfg.Bin }

// Start launches a download run once the spawn limiter admits it.
func (c *Client) Start(ctx context.Context, args []string, timeout time.Duration) (*process.Handle, error) {
	if err := c.admit(ctx); err != nil {
		return nil, err
	}
	return c.runner.Start(ctx, process.Spec{
		Tool:    Tool,
		Bin:     c.cfg.Bin,
		Args:    args,
		Timeout: timeout,
	})
}

// admit blocks until a spawn token is available or ctx ends.
func (c *Client) admit(ctx context.Context) error {
	r := c.limiter.Reserve()
	if !r.OK() {
		return fmt.Errorf("extractor spawn limiter: burst exceeded")
	}
	delay := r.Delay()
	if delay == 0 {
		return nil
	}
	metrics.ExtractorThrottledTotal.Inc()
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	}
}

// Info extracts metadata for sourceURL. Results are cached, and concurrent
// lookups of the same URL share a single extractor run.
func (c *Client) Info(ctx context.Context, sourceURL string) (formats.VideoInfo, error) {
	key := infoKey(sourceURL)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var info formats.VideoInfo
		if err := json.Unmarshal(raw, &info); err == nil {
			metrics.IncCache(c.cache.Name(), "hit")
			return info, nil
		}
		c.cache.Delete(ctx, key)
	}
	metrics.IncCache(c.cache.Name(), "miss")

	// The shared run must outlive any single caller that gives up.
	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetchInfo(context.WithoutCancel(ctx), sourceURL)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return formats.VideoInfo{}, res.Err
		}
		info := res.Val.(formats.VideoInfo)
		if c.cfg.CacheTTL > 0 {
			if raw, err := json.Marshal(info); err == nil {
				c.cache.Set(ctx, key, raw, c.cfg.CacheTTL)
			}
		}
		return info, nil
	case <-ctx.Done():
		return formats.VideoInfo{}, ctx.Err()
	}
}

func (c *Client) fetchInfo(ctx context.Context, sourceURL string) (formats.VideoInfo, error) {
	if err := c.admit(ctx); err != nil {
		return formats.VideoInfo{}, err
	}
	var stdout bytes.Buffer
	_, diag, err := c.runner.Run(ctx, process.Spec{
		Tool:    Tool,
		Bin:     c.cfg.Bin,
		Args:    InfoArgs(sourceURL, c.cfg.UserAgent),
		Timeout: c.cfg.InfoTimeout,
		Stdout:  &stdout,
	})
	if err != nil {
		c.logger.Warn().Err(err).Str(xglog.FieldURL, sourceURL).Strs("diagnostics", diag).Msg("info extraction failed")
		return formats.VideoInfo{}, fmt.Errorf("extract info: %w", err)
	}

	var raw formats.RawInfo
	if err := json.Unmarshal(stdout.Bytes(), &raw); err != nil {
		return formats.VideoInfo{}, fmt.Errorf("%w: %v", ErrMalformedInfo, err)
	}
	return formats.BuildInfo(raw), nil
}

// InfoArgs is the argument vector for a single-document info dump.
func InfoArgs(sourceURL, userAgent string) []string {
	args := []string{"--dump-json", "--no-playlist", "--no-warnings"}
	if userAgent != "" {
		args = append(args, "--user-agent", userAgent)
	}
	return append(args, "--", sourceURL)
}

func infoKey(sourceURL string) string {
	sum := sha256.Sum256([]byte(sourceURL))
	return "info:" + hex.EncodeToString(sum[:])
}
