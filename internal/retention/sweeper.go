// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package retention removes finished downloads, stale temporary files and
// old download records from disk.
package retention

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/download"
	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/rs/zerolog"
)

// StaleTempAge is how old a temporary or partial file must be before it is
// considered abandoned. It exceeds the longest attempt plus embed.
const StaleTempAge = time.Hour

// ConfigSource returns the current configuration snapshot.
type ConfigSource interface {
	Get() config.AppConfig
}

// GarbageCollector is implemented by caches that need periodic compaction.
type GarbageCollector interface {
	RunGC()
}

// Report summarizes one sweep.
type Report struct {
	Outputs int
	Temps   int
	Records int
}

// Sweeper periodically enforces output retention.
type Sweeper struct {
	cfg     ConfigSource
	records store.Store
	gc      GarbageCollector
	now     func() time.Time
	logger  zerolog.Logger
}

// NewSweeper creates a Sweeper. records and gc may be nil.
func NewSweeper(cfg ConfigSource, records store.Store, gc GarbageCollector) *Sweeper {
	return &Sweeper{
		cfg:     cfg,
		records: records,
		gc:      gc,
		now:     time.Now,
		logger:  xglog.WithComponent("retention"),
	}
}

// Run sweeps on the configured interval until ctx ends. The interval is
// re-read after every sweep so config reloads take effect.
func (s *Sweeper) Run(ctx context.Context) error {
	for {
		interval := s.cfg.Get().Output.SweepInterval
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		t := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("retention sweep failed")
		}
	}
}

// Sweep runs one pass. A zero retention keeps outputs and records but
// still clears stale temporary files.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	out := s.cfg.Get().Output
	now := s.now()
	var rep Report

	entries, err := os.ReadDir(out.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return rep, nil
		}
		return rep, err
	}

	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		age := now.Sub(info.ModTime())
		path := filepath.Join(out.Dir, e.Name())

		switch {
		case download.IsWorkFile(e.Name()):
			if age > StaleTempAge && s.remove(path, "temp") {
				rep.Temps++
			}
		case out.Retention > 0 && age > out.Retention:
			if s.remove(path, "output") {
				rep.Outputs++
			}
		}
	}

	if s.records != nil && out.Retention > 0 {
		n, err := s.records.DeleteBefore(ctx, now.Add(-out.Retention))
		if err != nil {
			s.logger.Warn().Err(err).Msg("prune download records")
		} else if n > 0 {
			metrics.RetentionRemovedTotal.WithLabelValues("record").Add(float64(n))
			rep.Records = n
		}
	}
	if s.gc != nil {
		s.gc.RunGC()
	}

	if rep.Outputs+rep.Temps+rep.Records > 0 {
		s.logger.Info().
			Int("outputs", rep.Outputs).
			Int("temps", rep.Temps).
			Int("records", rep.Records).
			Msg("retention sweep removed old data")
	}
	return rep, nil
}

func (s *Sweeper) remove(path, kind string) bool {
	if err := os.Remove(path); err != nil {
		s.logger.Warn().Err(err).Str(xglog.FieldPath, path).Msg("remove expired file")
		return false
	}
	metrics.RetentionRemovedTotal.WithLabelValues(kind).Inc()
	return true
}
