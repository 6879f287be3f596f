// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerCache persists cache entries on local disk so they survive restarts.
// Expiry is delegated to Badger's per-entry TTL.
type BadgerCache struct {
	db     *badger.DB
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// OpenBadgerCache opens (or creates) a Badger database at path.
func OpenBadgerCache(path string, logger zerolog.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache: %w", err)
	}
	return &BadgerCache{db: db, logger: logger}, nil
}

func (c *BadgerCache) Name() string { return "badger" }

func (c *BadgerCache) Get(_ context.Context, key string) ([]byte, bool) {
	var out []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Str("key", key).Msg("badger get failed")
		}
		c.stats.misses.Add(1)
		return nil, false
	}
	c.stats.hits.Add(1)
	return out, true
}

func (c *BadgerCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger set failed")
		return
	}
	c.stats.sets.Add(1)
}

func (c *BadgerCache) Delete(_ context.Context, key string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("badger delete failed")
	}
}

func (c *BadgerCache) Stats() CacheStats {
	return CacheStats{
		Hits:   c.stats.hits.Load(),
		Misses: c.stats.misses.Load(),
		Sets:   c.stats.sets.Load(),
	}
}

func (c *BadgerCache) Close() error {
	return c.db.Close()
}

// RunGC reclaims value log space. Called from the retention sweeper.
func (c *BadgerCache) RunGC() {
	for c.db.RunValueLogGC(0.5) == nil {
	}
}
