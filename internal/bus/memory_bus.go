// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
)

// MemoryBus is an in-process pub/sub. Delivery blocks per subscriber until
// the publish context is done, so a slow reader cannot stall publishers
// longer than their deadline.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[string][]*memSub
	closed bool
}

const dropLogEvery = 100

var dropCount atomic.Uint64

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[string][]*memSub)}
}

func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	if ctx == nil {
		return fmt.Errorf("publish context is nil")
	}
	// Read lock is held during delivery so Close cannot close a channel
	// that is being sent on.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	metrics.BusPublishedTotal.WithLabelValues("memory").Inc()

	for _, s := range b.subs[topic] {
		select {
		case s.ch <- msg:
		case <-ctx.Done():
			reason := publishDropReason(ctx.Err())
			metrics.IncBusDropReason(topicClass(topic), reason)
			if count := dropCount.Add(1); count%dropLogEvery == 1 {
				logger := xglog.WithComponent("bus")
				logger.Warn().
					Str("topic", topic).
					Str("reason", reason).
					Uint64("dropped", count).
					Msg("memory bus failed to publish before deadline")
			}
			return fmt.Errorf("publish topic %q: %w", topic, ctx.Err())
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(_ context.Context, topic string) (Subscriber, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	s := &memSub{b: b, topic: topic, ch: make(chan Message, subscriberBuffer)}
	b.subs[topic] = append(b.subs[topic], s)
	metrics.BusSubscribers.WithLabelValues("memory").Inc()
	return s, nil
}

// Close detaches and closes every subscriber.
func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for topic, lst := range b.subs {
		for _, s := range lst {
			s.closeLocked()
		}
		delete(b.subs, topic)
	}
	return nil
}

type memSub struct {
	b      *MemoryBus
	topic  string
	ch     chan Message
	closed bool
}

func (s *memSub) C() <-chan Message {
	return s.ch
}

func (s *memSub) Close() error {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if s.closed {
		return nil
	}

	lst := s.b.subs[s.topic]
	out := lst[:0]
	for _, c := range lst {
		if c != s {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		delete(s.b.subs, s.topic)
	} else {
		s.b.subs[s.topic] = out
	}
	s.closeLocked()
	return nil
}

func (s *memSub) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)
	metrics.BusSubscribers.WithLabelValues("memory").Dec()
}

var _ Bus = (*MemoryBus)(nil)
