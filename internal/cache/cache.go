// SPDX-License-Identifier: MIT

// Package cache stores extractor info documents for a short time so repeated
// format lookups for the same URL do not respawn the extractor.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache provides thread-safe byte caching with expiration support.
type Cache interface {
	// Get retrieves a value. The bool is false if not found or expired.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores a value with the specified TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Stats() CacheStats
	// Name identifies the backend in logs and metrics.
	Name() string
	Close() error
}

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type entry struct {
	value      []byte
	expiration time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

// memoryCache is an in-memory implementation of Cache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	stats   CacheStats
	stop    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewMemoryCache creates a new in-memory cache. A positive cleanupInterval
// starts a janitor goroutine that runs until Close.
func NewMemoryCache(cleanupInterval time.Duration) Cache {
	c := &memoryCache{
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	if cleanupInterval > 0 {
		go c.janitor(cleanupInterval)
	}
	return c
}

func (c *memoryCache) Name() string { return "memory" }

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, found := c.entries[key]
	if !found || e.isExpired(c.now()) {
		c.stats.Misses++
		return nil, false
	}
	c.stats.Hits++
	return e.value, true
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, expiration: c.now().Add(ttl)}
	c.stats.Sets++
}

func (c *memoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *memoryCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.CurrentSize = len(c.entries)
	return s
}

// deleteExpired removes all expired entries and returns how many were dropped.
func (c *memoryCache) deleteExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	count := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			count++
		}
	}
	c.stats.Evictions += int64(count)
	return count
}

func (c *memoryCache) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.deleteExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

type noOpCache struct{}

// NewNoOpCache creates a cache that doesn't cache anything.
func NewNoOpCache() Cache {
	return noOpCache{}
}

func (noOpCache) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (noOpCache) Set(context.Context, string, []byte, time.Duration) {}
func (noOpCache) Delete(context.Context, string)                     {}
func (noOpCache) Stats() CacheStats                                  { return CacheStats{} }
func (noOpCache) Name() string                                       { return "none" }
func (noOpCache) Close() error                                       { return nil }
