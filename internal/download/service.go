// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package download

import (
	"context"
	"fmt"

	"github.com/ManuGH/vidmux/internal/formats"
	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metadata"
	netx "github.com/ManuGH/vidmux/internal/platform/net"
	"github.com/ManuGH/vidmux/internal/progress"
	"github.com/ManuGH/vidmux/internal/store"
	"github.com/google/uuid"
)

// InfoSource supplies title, uploader and thumbnail for tagging.
type InfoSource interface {
	Info(ctx context.Context, sourceURL string) (formats.VideoInfo, error)
}

// Embedder writes tags into a finished file.
type Embedder interface {
	Embed(ctx context.Context, path string, tags metadata.Tags) error
}

// Service is the full download sequence: orchestrate, embed, announce.
type Service struct {
	orch     *Orchestrator
	embedder Embedder
	info     InfoSource
	events   progress.Publisher
	slots    chan struct{}
}

// NewService wires a Service. maxConcurrent <= 0 disables the limit.
func NewService(orch *Orchestrator, embedder Embedder, info InfoSource, events progress.Publisher, maxConcurrent int) *Service {
	s := &Service{orch: orch, embedder: embedder, info: info, events: events}
	if maxConcurrent > 0 {
		s.slots = make(chan struct{}, maxConcurrent)
	}
	return s
}

// Run downloads req and embeds metadata. Embedding problems are logged and
// never fail the run. Terminal failures are also published as error events.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	normalized, err := netx.NormalizeSourceURL(req.URL)
	if err != nil {
		return Result{}, err
	}
	req.URL = normalized
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	if s.slots != nil {
		select {
		case s.slots <- struct{}{}:
			defer func() { <-s.slots }()
		default:
			s.events.Publish(ctx, progress.Failed(req.ID, ErrBusy.Error()))
			return Result{ID: req.ID}, ErrBusy
		}
	}

	ctx = xglog.ContextWithDownloadID(ctx, req.ID)
	logger := xglog.WithComponentFromContext(ctx, "download")

	res, err := s.orch.Download(ctx, req)
	if err != nil {
		s.events.Publish(ctx, progress.Failed(req.ID, err.Error()))
		return res, err
	}

	if s.embedder != nil {
		s.orch.mark(ctx, req.ID, store.StateEmbedding, "")
		s.events.Publish(ctx, progress.Status(req.ID, progress.StatusEmbedding))
		if err := s.embedder.Embed(ctx, res.Path, s.tags(ctx, req.URL)); err != nil {
			logger.Warn().Err(err).Msg("metadata embedding failed, serving untagged file")
		}
	}

	s.orch.mark(ctx, req.ID, store.StateSucceeded, "")
	s.events.Publish(ctx, progress.Completed(req.ID, res.Filename))
	return res, nil
}

func (s *Service) tags(ctx context.Context, sourceURL string) metadata.Tags {
	if s.info == nil {
		return metadata.Tags{}
	}
	info, err := s.info.Info(ctx, sourceURL)
	if err != nil {
		logger := xglog.WithComponentFromContext(ctx, "download")
		logger.Warn().Err(err).Msg("info lookup for tags failed")
		return metadata.Tags{}
	}
	return metadata.Tags{Title: info.Title, Artist: info.Uploader, Thumbnail: info.Thumbnail}
}

// Record returns the stored state of a download.
func (s *Service) Record(ctx context.Context, id string) (store.Record, error) {
	rec, err := s.orch.records.Get(ctx, id)
	if err != nil {
		return store.Record{}, fmt.Errorf("download %s: %w", id, err)
	}
	return rec, nil
}
