// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: mr.Addr()}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return mr, c
}

func TestRedisCache_SetGet(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "url-hash", []byte(`{"title":"x"}`), 5*time.Minute)
	got, ok := c.Get(ctx, "url-hash")
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"x"}`, string(got))
	assert.True(t, mr.Exists(redisKeyPrefix+"url-hash"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestRedisCache_TTL(t *testing.T) {
	mr, c := setupMiniRedis(t)
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
}

func TestRedisCache_Delete(t *testing.T) {
	_, c := setupMiniRedis(t)
	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"), time.Minute)
	c.Delete(ctx, "k")
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestRedisCache_HealthCheck(t *testing.T) {
	mr, c := setupMiniRedis(t)
	require.NoError(t, c.HealthCheck(context.Background()))
	mr.Close()
	assert.Error(t, c.HealthCheck(context.Background()))
}

func TestNewRedisCacheUnavailable(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{Addr: "127.0.0.1:1"}, zerolog.Nop())
	require.Error(t, err)
}
