// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestMemoryBusDeliversToAllSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	b := NewMemoryBus()
	defer b.Close()
	ctx := context.Background()

	s1, err := b.Subscribe(ctx, "progress")
	require.NoError(t, err)
	s2, err := b.Subscribe(ctx, "progress")
	require.NoError(t, err)
	other, err := b.Subscribe(ctx, "progress.abc")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, "progress", Message(`{"percent":1}`)))

	assert.Equal(t, Message(`{"percent":1}`), <-s1.C())
	assert.Equal(t, Message(`{"percent":1}`), <-s2.C())
	select {
	case m := <-other.C():
		t.Fatalf("unexpected message on other topic: %s", m)
	default:
	}
}

func TestMemoryBusNoReplay(t *testing.T) {
	b := NewMemoryBus()
	ctx := context.Background()

	require.NoError(t, b.Publish(ctx, "progress", Message("early")))
	s, err := b.Subscribe(ctx, "progress")
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, "progress", Message("late")))

	assert.Equal(t, Message("late"), <-s.C())
	require.NoError(t, s.Close())
	_, open := <-s.C()
	assert.False(t, open, "channel closed after Close")
}

func TestMemoryBusPublishContextTimeoutIncrementsDropMetrics(t *testing.T) {
	b := NewMemoryBus()
	sub, err := b.Subscribe(context.Background(), "topic")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sub.Close() })

	// Fill subscriber channel to capacity so next publish blocks.
	for i := 0; i < cap(sub.C()); i++ {
		require.NoError(t, b.Publish(context.Background(), "topic", Message("msg")))
	}

	initial := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("topic", "timeout"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = b.Publish(ctx, "topic", Message("blocked"))
	require.ErrorIs(t, err, context.DeadlineExceeded)

	final := getCounterValue(t, metrics.BusDroppedTotal.WithLabelValues("topic", "timeout"))
	assert.Greater(t, final, initial)
}

func TestMemoryBusPublishRejectsNilContext(t *testing.T) {
	b := NewMemoryBus()
	//nolint:staticcheck // nil context is the case under test
	err := b.Publish(nil, "topic", Message("msg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context is nil")
}

func TestMemoryBusCloseRacesWithPublish(t *testing.T) {
	defer goleak.VerifyNone(t)
	b := NewMemoryBus()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		s, err := b.Subscribe(ctx, "progress")
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range s.C() {
			}
		}()
		go func() { _ = s.Close() }()
	}
	for i := 0; i < 100; i++ {
		pctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		_ = b.Publish(pctx, "progress", Message("x"))
		cancel()
	}
	require.NoError(t, b.Close())
	wg.Wait()

	assert.ErrorIs(t, b.Publish(ctx, "progress", Message("x")), ErrClosed)
	_, err := b.Subscribe(ctx, "progress")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestTopicClass(t *testing.T) {
	assert.Equal(t, "progress", topicClass("progress"))
	assert.Equal(t, "progress.*", topicClass("progress.7f3c"))
}
