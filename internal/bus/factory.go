// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bus

import (
	"context"
	"fmt"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/rs/zerolog"
)

// New builds the configured bus backend.
func New(ctx context.Context, cfg config.BusConfig, logger zerolog.Logger) (Bus, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryBus(), nil
	case "redis":
		b, err := NewRedisBus(ctx, cfg.RedisAddr, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown bus backend %q", cfg.Backend)
	}
}
