// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 500 * time.Millisecond

// ConfigHolder holds configuration with atomic reloading capability.
// Only fields read through Get at use time observe reloads; listen address,
// backends and binaries are fixed for the process lifetime.
type ConfigHolder struct {
	mu      sync.RWMutex
	current AppConfig
	loader  *Loader
	watcher *fsnotify.Watcher
	logger  zerolog.Logger

	reloadMu        sync.RWMutex
	reloadListeners []chan<- AppConfig
}

// NewConfigHolder creates a new configuration holder with initial config.
func NewConfigHolder(initial AppConfig, loader *Loader) *ConfigHolder {
	return &ConfigHolder{
		current: initial,
		loader:  loader,
		logger:  xglog.WithComponent("config"),
	}
}

// Get returns the current configuration (thread-safe read).
func (h *ConfigHolder) Get() AppConfig {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and environment.
// On failure the previous configuration stays active.
func (h *ConfigHolder) Reload(_ context.Context) error {
	h.logger.Info().Str(xglog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.reload_failed").Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().Str(xglog.FieldEvent, "config.reload_success").Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher starts watching the config file for changes.
// If no config file is used, this is a no-op.
func (h *ConfigHolder) StartWatcher(ctx context.Context) error {
	path := h.loader.Path()
	if path == "" {
		h.logger.Info().Str(xglog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}
	h.watcher = watcher

	h.logger.Info().Str(xglog.FieldEvent, "config.watcher_started").Str(xglog.FieldPath, path).
		Msg("watching config file for changes")

	go h.watchLoop(ctx, watcher)
	return nil
}

func (h *ConfigHolder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
		_ = watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xglog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			// Write and Create cover in-place edits and editors that swap files.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().Str(xglog.FieldEvent, "config.file_changed").Str("op", event.Op.String()).Msg("config file changed")
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				if err := h.Reload(ctx); err != nil {
					h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.auto_reload_failed").Msg("automatic config reload failed")
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str(xglog.FieldEvent, "config.watcher_error").Msg("config watcher error")
		}
	}
}

// RegisterListener registers a channel to receive config reload notifications.
// Sends are non-blocking; the caller owns the channel.
func (h *ConfigHolder) RegisterListener(ch chan<- AppConfig) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

func (h *ConfigHolder) notifyListeners(newCfg AppConfig) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().Str(xglog.FieldEvent, "config.listener_skip").Msg("skipped notifying listener (channel full)")
		}
	}
}

func (h *ConfigHolder) logChanges(old, newCfg AppConfig) {
	if old.LogLevel != newCfg.LogLevel {
		h.logger.Info().Str("old", old.LogLevel).Str("new", newCfg.LogLevel).Msg("log level changed")
	}
	if old.Output.Retention != newCfg.Output.Retention {
		h.logger.Info().Dur("old", old.Output.Retention).Dur("new", newCfg.Output.Retention).Msg("output retention changed")
	}
	if old.Server.ListenAddr != newCfg.Server.ListenAddr {
		h.logger.Warn().Str("old", old.Server.ListenAddr).Str("new", newCfg.Server.ListenAddr).
			Msg("listen address changed; restart required to take effect")
	}
}
