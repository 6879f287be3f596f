// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package download runs the extractor for one request with progress
// reporting, retries and output validation, then hands the file to the
// metadata embedder.
package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ManuGH/vidmux/internal/extractor"
	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/ManuGH/vidmux/internal/process"
	"github.com/ManuGH/vidmux/internal/progress"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/ManuGH/vidmux/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Starter launches one extractor download run.
type Starter interface {
	Start(ctx context.Context, args []string, timeout time.Duration) (*process.Handle, error)
}

// Config holds the per-attempt parameters.
type Config struct {
	OutputDir      string
	TranscoderPath string
	MergeFormat    string
	AudioBitrate   string
	UserAgent      string
	AttemptTimeout time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
}

// Request is one download. ID is generated when empty.
type Request struct {
	ID            string
	URL           string
	VideoFormatID string
	AudioFormatID string
}

// Result names the produced file.
type Result struct {
	ID       string
	Filename string // base name inside the output directory
	Path     string
	Attempts int
}

// Orchestrator runs download attempts. It never emits completion events;
// that is left to the caller once post-processing is done.
type Orchestrator struct {
	cfg       Config
	extractor Starter
	events    progress.Publisher
	records   store.Store
	now       func() time.Time
}

// NewOrchestrator wires an orchestrator. A nil store keeps records in memory.
func NewOrchestrator(cfg Config, ex Starter, events progress.Publisher, records store.Store) *Orchestrator {
	if cfg.MergeFormat == "" {
		cfg.MergeFormat = "mp4"
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if records == nil {
		records = store.NewMemoryStore()
	}
	return &Orchestrator{cfg: cfg, extractor: ex, events: events, records: records, now: time.Now}
}

// Download runs the extractor until the output exists or attempts run out.
// Cancellation of ctx ends the run without further retries. On failure no
// file for the request id is left in the output directory.
func (o *Orchestrator) Download(ctx context.Context, req Request) (Result, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	ctx = xglog.ContextWithDownloadID(ctx, req.ID)
	logger := xglog.WithComponentFromContext(ctx, "download")

	metrics.DownloadsInFlight.Inc()
	defer metrics.DownloadsInFlight.Dec()

	rec := store.Record{
		ID:            req.ID,
		URL:           req.URL,
		VideoFormatID: req.VideoFormatID,
		AudioFormatID: req.AudioFormatID,
		State:         store.StatePending,
		CreatedAt:     o.now().UTC(),
	}
	o.save(ctx, &rec)

	args := extractor.DownloadArgs(extractor.DownloadOptions{
		ID:             req.ID,
		URL:            req.URL,
		VideoFormatID:  req.VideoFormatID,
		AudioFormatID:  req.AudioFormatID,
		OutputDir:      o.cfg.OutputDir,
		TranscoderPath: o.cfg.TranscoderPath,
		MergeFormat:    o.cfg.MergeFormat,
		AudioBitrate:   o.cfg.AudioBitrate,
		UserAgent:      o.cfg.UserAgent,
	})
	selector := extractor.FormatSelector(req.VideoFormatID, req.AudioFormatID)

	m := newMachine(o.cfg.MaxAttempts)
	var lastErr error
	for {
		rec.State = store.StateRunning
		rec.Attempts = m.attempt
		o.save(ctx, &rec)

		var filename string
		filename, lastErr = o.attempt(ctx, req.ID, m.attempt, selector, args)
		old := m.phase
		phase := m.finish(lastErr, ctx.Err() == nil)
		logger.Debug().
			Str(xglog.FieldOldState, old.String()).
			Str(xglog.FieldNewState, phase.String()).
			Int(xglog.FieldAttempt, m.attempt).
			Msg("download state transition")

		if phase == PhaseSucceeded {
			rec.Filename = filename
			o.save(ctx, &rec)
			metrics.DownloadsTotal.WithLabelValues("success").Inc()
			logger.Info().Str(xglog.FieldEvent, "download.succeeded").Int(xglog.FieldAttempt, m.attempt).Str("file", filename).Msg("download finished")
			return Result{ID: req.ID, Filename: filename, Path: filepath.Join(o.cfg.OutputDir, filename), Attempts: m.attempt}, nil
		}
		if phase == PhaseFailed {
			break
		}

		n := m.retry()
		metrics.DownloadRetriesTotal.Inc()
		rec.State = store.StateRetrying
		rec.LastError = lastErr.Error()
		o.save(ctx, &rec)
		logger.Warn().Err(lastErr).Int(xglog.FieldAttempt, n).Msg("download attempt failed, retrying")
		o.events.Publish(ctx, progress.Status(req.ID, fmt.Sprintf("Retrying (%d/%d)…", n, m.retries())))

		if err := sleepCtx(ctx, o.cfg.RetryDelay); err != nil {
			lastErr = err
			break
		}
	}

	o.removePartials(ctx, req.ID)
	rec.State = store.StateFailed
	rec.LastError = lastErr.Error()
	o.save(ctx, &rec)
	metrics.DownloadsTotal.WithLabelValues("failure").Inc()
	logger.Error().Err(lastErr).Str(xglog.FieldEvent, "download.failed").Int(xglog.FieldAttempt, m.attempt).Msg("download failed")

	if ctx.Err() != nil {
		return Result{ID: req.ID}, fmt.Errorf("download %s: %w", req.ID, lastErr)
	}
	return Result{ID: req.ID}, fmt.Errorf("%w (%d attempts): %w", ErrRetriesExhausted, m.attempt, lastErr)
}

// attempt runs the extractor once and translates its output into events.
// It returns the base name of the finished file.
func (o *Orchestrator) attempt(ctx context.Context, id string, n int, selector string, args []string) (filename string, err error) {
	ctx, span := telemetry.Tracer("vidmux/download").Start(ctx, "download.attempt")
	span.SetAttributes(telemetry.DownloadAttributes(id, n, selector)...)
	start := o.now()
	defer func() {
		oc := outcome(err)
		metrics.RecordAttempt(oc, o.now().Sub(start).Seconds())
		span.SetAttributes(attribute.String(telemetry.DownloadOutcomeKey, oc))
		telemetry.RecordError(span, err, oc)
		span.End()
	}()

	h, err := o.extractor.Start(ctx, args, o.cfg.AttemptTimeout)
	if err != nil {
		return "", err
	}
	for line := range h.Lines() {
		o.emit(ctx, id, line.Text)
	}
	st := h.Wait()
	span.SetAttributes(attribute.Int(telemetry.ToolExitCodeKey, st.Code))
	if st.Err != nil {
		return "", st.Err
	}

	filename, ok := resolveOutput(o.cfg.OutputDir, id, o.cfg.MergeFormat)
	if !ok {
		return "", fmt.Errorf("%w: %s.*", ErrOutputMissing, id)
	}
	return filename, nil
}

func (o *Orchestrator) emit(ctx context.Context, id, line string) {
	p, ok := extractor.ParseProgress(line)
	if !ok {
		return
	}
	switch {
	case p.Phase == extractor.PhaseFinalizing:
		o.events.Publish(ctx, progress.Finalizing(id))
	case p.HasPercent:
		o.events.Publish(ctx, progress.Percent(id, p.Percent))
	}
	if p.Phase == extractor.PhaseDownloading {
		o.events.Publish(ctx, progress.Status(id, progress.StatusDownloading))
	}
}

// removePartials deletes every file the extractor may have left for id.
func (o *Orchestrator) removePartials(ctx context.Context, id string) {
	matches, err := filepath.Glob(filepath.Join(o.cfg.OutputDir, id+".*"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger := xglog.WithComponentFromContext(ctx, "download")
			logger.Warn().Err(err).Str(xglog.FieldPath, path).Msg("remove partial output")
		}
	}
}

func (o *Orchestrator) save(ctx context.Context, rec *store.Record) {
	rec.UpdatedAt = o.now().UTC()
	// Record keeping must not depend on the caller still being around.
	if err := o.records.Put(context.WithoutCancel(ctx), *rec); err != nil {
		logger := xglog.WithComponentFromContext(ctx, "download")
		logger.Warn().Err(err).Msg("persist download record")
	}
}

// Records exposes the record store for lookups.
func (o *Orchestrator) Records() store.Store { return o.records }

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mark moves an existing record to state.
func (o *Orchestrator) mark(ctx context.Context, id string, state store.State, lastErr string) {
	rec, err := o.records.Get(context.WithoutCancel(ctx), id)
	if err != nil {
		return
	}
	rec.State = state
	if lastErr != "" {
		rec.LastError = lastErr
	}
	o.save(ctx, &rec)
}
