// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xlog "github.com/sparkledex/sparkledex/internal/log"
)

// Holder holds configuration with atomic reloading capability.
// It provides thread-safe access to the current Settings and supports hot
// reloading from file changes or a manual trigger (SIGHUP, tests).
type Holder struct {
	mu         sync.RWMutex
	current    Settings
	loader     *Loader
	configPath string
	watcher    *fsnotify.Watcher
	logger     zerolog.Logger

	// Reload notifications
	reloadMu        sync.RWMutex
	reloadListeners []chan<- Settings
}

// NewHolder creates a new configuration holder with initial settings.
func NewHolder(initial Settings, loader *Loader, configPath string) *Holder {
	return &Holder{
		current:         initial,
		loader:          loader,
		configPath:      configPath,
		logger:          xlog.WithComponent("config"),
		reloadListeners: make([]chan<- Settings, 0),
	}
}

// Get returns the current settings (thread-safe read).
func (h *Holder) Get() Settings {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload reloads configuration from file and validates it. If loading or
// validation fails, the old configuration is kept and the error returned, so
// a reload is always all-or-nothing.
func (h *Holder) Reload(_ context.Context) error {
	h.logger.Info().Str(xlog.FieldEvent, "config.reload_start").Msg("reloading configuration")

	newCfg, err := h.loader.Load()
	if err != nil {
		h.logger.Error().
			Err(err).
			Str(xlog.FieldEvent, "config.reload_failed").
			Msg("failed to load new configuration")
		return fmt.Errorf("load config: %w", err)
	}

	h.mu.Lock()
	oldCfg := h.current
	h.current = newCfg
	h.mu.Unlock()

	h.notifyListeners(newCfg)
	h.logChanges(oldCfg, newCfg)

	h.logger.Info().
		Str(xlog.FieldEvent, "config.reload_success").
		Msg("configuration reloaded successfully")
	return nil
}

// StartWatcher starts watching the config file for changes.
// If configPath is empty, this is a no-op (config comes from ENV only).
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.configPath == "" {
		h.logger.Info().
			Str(xlog.FieldEvent, "config.watcher_disabled").
			Msg("config file watcher disabled (using ENV-only configuration)")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	h.watcher = watcher

	if err := watcher.Add(h.configPath); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}

	h.logger.Info().
		Str(xlog.FieldEvent, "config.watcher_started").
		Str("path", h.configPath).
		Msg("watching config file for changes")

	go h.watchLoop(ctx)
	return nil
}

// watchLoop is the main file watcher loop.
func (h *Holder) watchLoop(ctx context.Context) {
	// Debounce timer to avoid multiple reloads for rapid file changes
	// (editors often write + rename in quick succession).
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xlog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			if h.watcher != nil {
				_ = h.watcher.Close()
			}
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			// Write and Create cover vim, nano and plain redirects.
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				h.logger.Debug().
					Str(xlog.FieldEvent, "config.file_changed").
					Str("op", event.Op.String()).
					Msg("config file changed")

				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := h.Reload(ctx); err != nil {
						h.logger.Error().
							Err(err).
							Str(xlog.FieldEvent, "config.auto_reload_failed").
							Msg("automatic config reload failed")
					}
				})
			}

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().
				Err(err).
				Str(xlog.FieldEvent, "config.watcher_error").
				Msg("config watcher error")
		}
	}
}

// Stop stops the config watcher (if running).
func (h *Holder) Stop() {
	if h.watcher != nil {
		_ = h.watcher.Close()
	}
}

// RegisterListener registers a channel to receive the new Settings whenever a
// reload succeeds. The caller owns the channel.
func (h *Holder) RegisterListener(ch chan<- Settings) {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	h.reloadListeners = append(h.reloadListeners, ch)
}

// notifyListeners sends the new settings to all registered listeners (non-blocking).
func (h *Holder) notifyListeners(newCfg Settings) {
	h.reloadMu.RLock()
	defer h.reloadMu.RUnlock()

	for _, ch := range h.reloadListeners {
		select {
		case ch <- newCfg:
		default:
			h.logger.Warn().
				Str(xlog.FieldEvent, "config.listener_skip").
				Msg("skipped notifying listener (channel full)")
		}
	}
}

// logChanges logs the differences between old and new configuration for the
// live-applicable keys, and flags keys that need a restart to take effect.
func (h *Holder) logChanges(old, newCfg Settings) {
	if old.LogLevel != newCfg.LogLevel {
		h.logger.Info().
			Str("old", old.LogLevel).
			Str("new", newCfg.LogLevel).
			Msg("config changed: LogLevel")
	}
	if old.Debug != newCfg.Debug {
		h.logger.Info().
			Bool("old", old.Debug).
			Bool("new", newCfg.Debug).
			Msg("config changed: Debug")
	}
	if old.MaxUploadBytes != newCfg.MaxUploadBytes {
		h.logger.Info().
			Int64("old", old.MaxUploadBytes).
			Int64("new", newCfg.MaxUploadBytes).
			Msg("config changed: MaxUploadBytes")
	}
	if old.UploadRate != newCfg.UploadRate || old.UploadBurst != newCfg.UploadBurst ||
		old.UploadIPRate != newCfg.UploadIPRate || old.UploadIPBurst != newCfg.UploadIPBurst {
		h.logger.Info().Msg("config changed: upload admission limits")
	}
	if old.Listen != newCfg.Listen || old.MetricsListen != newCfg.MetricsListen {
		h.logger.Warn().
			Str(xlog.FieldEvent, "config.restart_required").
			Msg("listener addresses changed; restart required to apply")
	}
	if old.RateLimit != newCfg.RateLimit || old.RateLimitRPM != newCfg.RateLimitRPM {
		h.logger.Warn().
			Str(xlog.FieldEvent, "config.restart_required").
			Msg("request rate limit topology changed; restart required to apply")
	}
}
