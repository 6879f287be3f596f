// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/ManuGH/vidmux/internal/progress"
)

// handleProgress streams progress events as server-sent events named
// "progress". With ?id= only that download is streamed and the stream ends
// after its terminal event.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.WithComponentFromContext(ctx, "api")
	id := r.URL.Query().Get("id")

	sub, err := s.deps.Progress.Subscribe(ctx, id)
	if err != nil {
		writeServiceUnavailable(w, err)
		return
	}
	defer func() { _ = sub.Close() }()

	metrics.ProgressStreams.Inc()
	defer metrics.ProgressStreams.Dec()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	rc := http.NewResponseController(w)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	_ = rc.Flush()

	interval := s.cfg.Server.Heartbeat
	if interval <= 0 {
		interval = 15 * time.Second
	}
	heartbeat := time.NewTicker(interval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.streams.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		case msg, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: progress\ndata: %s\n\n", msg); err != nil {
				logger.Debug().Err(err).Msg("progress stream write failed")
				return
			}
			_ = rc.Flush()

			if id != "" {
				var ev progress.Event
				if json.Unmarshal(msg, &ev) == nil && ev.Terminal() {
					return
				}
			}
		}
	}
}
