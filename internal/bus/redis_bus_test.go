// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package bus

import (
	"context"
	"testing"
	"time"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisBus(t *testing.T) (*miniredis.Miniredis, *RedisBus) {
	t.Helper()
	mr := miniredis.RunT(t)
	b, err := NewRedisBus(context.Background(), mr.Addr(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return mr, b
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	_, b := newTestRedisBus(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "progress.abc")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, b.Publish(ctx, "progress.abc", Message(`{"status":"Downloading…"}`)))

	select {
	case m := <-sub.C():
		assert.JSONEq(t, `{"status":"Downloading…"}`, string(m))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}

func TestRedisBusUsesPrefixedChannels(t *testing.T) {
	mr, b := newTestRedisBus(t)
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "progress")
	require.NoError(t, err)
	defer sub.Close()

	assert.Contains(t, mr.PubSubChannels(""), redisChannelPrefix+"progress")
}

func TestRedisBusCloseClosesChannel(t *testing.T) {
	_, b := newTestRedisBus(t)
	sub, err := b.Subscribe(context.Background(), "progress")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	_, open := <-sub.C()
	assert.False(t, open)
	require.NoError(t, sub.Close())
}

func TestNewRedisBusUnavailable(t *testing.T) {
	_, err := NewRedisBus(context.Background(), "127.0.0.1:1", zerolog.Nop())
	require.Error(t, err)
}

func TestFactoryDefaultsToMemory(t *testing.T) {
	b, err := New(context.Background(), cfgBus("", ""), zerolog.Nop())
	require.NoError(t, err)
	_, ok := b.(*MemoryBus)
	assert.True(t, ok)

	_, err = New(context.Background(), cfgBus("kafka", ""), zerolog.Nop())
	assert.Error(t, err)
}

func cfgBus(backend, addr string) config.BusConfig {
	return config.BusConfig{Backend: backend, RedisAddr: addr}
}
