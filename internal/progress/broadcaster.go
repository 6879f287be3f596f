// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ManuGH/vidmux/internal/bus"
	xglog "github.com/ManuGH/vidmux/internal/log"
)

// TopicAll carries every event from every download.
const TopicAll = "progress"

// TopicFor returns the topic that carries only the events of one download.
func TopicFor(downloadID string) string {
	return TopicAll + "." + downloadID
}

// Publisher is what download code needs to report progress.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Broadcaster encodes events and publishes them on the bus.
type Broadcaster struct {
	bus     bus.Bus
	timeout time.Duration
}

// NewBroadcaster wraps b. Each publish is bounded by timeout so a stalled
// subscriber cannot hold up a download.
func NewBroadcaster(b bus.Bus, timeout time.Duration) *Broadcaster {
	if timeout <= 0 {
		timeout = time.Second
	}
	return &Broadcaster{bus: b, timeout: timeout}
}

// Publish fans ev out to the shared topic and, when it carries a download
// id, to that download's topic. Failures are logged, never returned.
func (b *Broadcaster) Publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger := xglog.WithComponentFromContext(ctx, "progress")
		logger.Error().Err(err).Msg("encode progress event")
		return
	}
	// Progress must still flow while the request context is winding down.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	topics := []string{TopicAll}
	if ev.DownloadID != "" {
		topics = append(topics, TopicFor(ev.DownloadID))
	}
	for _, topic := range topics {
		if err := b.bus.Publish(pubCtx, topic, bus.Message(payload)); err != nil {
			logger := xglog.WithComponentFromContext(ctx, "progress")
			logger.Debug().Err(err).Str("topic", topic).Msg("progress event dropped")
		}
	}
}

// Subscribe follows one download when downloadID is set, otherwise all.
func (b *Broadcaster) Subscribe(ctx context.Context, downloadID string) (bus.Subscriber, error) {
	topic := TopicAll
	if downloadID != "" {
		topic = TopicFor(downloadID)
	}
	sub, err := b.bus.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe progress: %w", err)
	}
	return sub, nil
}

// Recorder collects events in memory. Useful as a Publisher in tests.
type Recorder struct {
	Events chan Event
}

func NewRecorder(size int) *Recorder {
	return &Recorder{Events: make(chan Event, size)}
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	select {
	case r.Events <- ev:
	default:
	}
}

// Drain returns all events recorded so far.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-r.Events:
			out = append(out, ev)
		default:
			return out
		}
	}
}
