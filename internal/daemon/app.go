// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/log"
	"github.com/rs/zerolog"
)

// Sweeper is a background loop that runs until ctx ends.
type Sweeper interface {
	Run(ctx context.Context) error
}

// App owns the long-lived runtime lifecycle (watchers, reload wiring, retention)
// and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	sweeper      Sweeper
	reloadSignal os.Signal
}

// NewApp creates a new App orchestrator. cfgHolder and sweeper may be nil.
func NewApp(logger zerolog.Logger, manager Manager, cfgHolder *config.ConfigHolder, sweeper Sweeper) *App {
	return &App{
		logger:       logger,
		manager:      manager,
		cfgHolder:    cfgHolder,
		sweeper:      sweeper,
		reloadSignal: syscall.SIGHUP,
	}
}

// Run starts all owned background subsystems and blocks until ctx is cancelled or a fatal error occurs.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if a.cfgHolder != nil {
		if err := a.cfgHolder.StartWatcher(ctx); err != nil {
			a.logger.Warn().Err(err).Str("event", "config.watcher_start_failed").Msg("failed to start config watcher")
		}

		applyCh := make(chan config.AppConfig, 1)
		a.cfgHolder.RegisterListener(applyCh)

		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case cfg := <-applyCh:
					a.apply(cfg)
				}
			}
		})
	}

	// SIGHUP trigger for manual reload.
	if a.cfgHolder != nil && a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str("event", "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.cfgHolder.Reload(context.Background()); err != nil {
						a.logger.Warn().
							Err(err).
							Str("event", "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	if a.sweeper != nil {
		g.Go(func() error {
			return a.sweeper.Run(ctx)
		})
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.Background())
		}
		return err
	})

	return g.Wait()
}

// apply takes the parts of a reloaded config that can change at runtime.
// Retention settings are read by the sweeper on every pass.
func (a *App) apply(cfg config.AppConfig) {
	if cfg.LogLevel == "" {
		return
	}
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		a.logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("ignoring invalid log level")
		return
	}
	a.logger.Info().Str("event", "config.applied").Str("level", cfg.LogLevel).Msg("applied reloaded config")
}
