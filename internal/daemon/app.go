// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sparkledex/sparkledex/internal/api"
	"github.com/sparkledex/sparkledex/internal/config"
	"github.com/sparkledex/sparkledex/internal/log"
)

// App ties together the config holder, the API server and the lifecycle
// manager, and runs the reload loops alongside the servers.
type App struct {
	logger    zerolog.Logger
	manager   Manager
	cfgHolder *config.Holder
	apiServer *api.Server
}

// NewApp wires the application from already-constructed parts.
func NewApp(logger zerolog.Logger, manager Manager, holder *config.Holder, apiServer *api.Server) *App {
	return &App{
		logger:    logger.With().Str("component", "app").Logger(),
		manager:   manager,
		cfgHolder: holder,
		apiServer: apiServer,
	}
}

// Run starts the servers and the config reload loops and blocks until the
// context is cancelled or a server fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	// Config file watcher is best-effort: a missing or unwatchable file
	// must not keep the service from starting.
	if err := a.cfgHolder.StartWatcher(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("Config watcher not started, hot reload via file changes disabled")
	}

	// Apply reloaded settings to the running server.
	reloads := make(chan config.Settings, 1)
	a.cfgHolder.RegisterListener(reloads)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case snap := <-reloads:
				a.apiServer.Apply(snap)
			}
		}
	})

	// SIGHUP triggers an explicit reload, independent of the file watcher.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	g.Go(func() error {
		defer signal.Stop(sighup)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sighup:
				a.logger.Info().Str(log.FieldEvent, "config.sighup").Msg("SIGHUP received, reloading configuration")
				if err := a.cfgHolder.Reload(ctx); err != nil {
					a.logger.Error().Err(err).Msg("SIGHUP reload failed, keeping previous configuration")
				}
			}
		}
	})

	g.Go(func() error {
		defer a.cfgHolder.Stop()
		return a.manager.Start(ctx)
	})

	return g.Wait()
}
