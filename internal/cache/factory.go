// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/rs/zerolog"
)

// New builds the configured cache backend.
func New(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case "", "none":
		return NewNoOpCache(), nil
	case "memory":
		return NewMemoryCache(time.Minute), nil
	case "redis":
		c, err := NewRedisCache(ctx, RedisConfig{Addr: cfg.RedisAddr}, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "badger":
		c, err := OpenBadgerCache(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
