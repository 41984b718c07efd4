// kz-api - CS2KZ records and game-server backend
// SPDX-License-Identifier: MIT

// Command server runs the kz-api process: the HTTP surface with
// cookie-session auth and the WebSocket endpoint for game servers.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gokz/kz-api/internal/api"
	"github.com/gokz/kz-api/internal/auth"
	"github.com/gokz/kz-api/internal/config"
	"github.com/gokz/kz-api/internal/events"
	"github.com/gokz/kz-api/internal/gameserver"
	"github.com/gokz/kz-api/internal/logging"
	"github.com/gokz/kz-api/internal/supervisor"
	"github.com/gokz/kz-api/internal/supervisor/services"
	"github.com/gokz/kz-api/internal/task"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("fatal")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.Init(logging.Config{Level: "info", Format: "console"})
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().Msg("kz-api starting")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := events.NewBus(events.NewZerologAdapter(logging.With().Str("component", "events").Logger()))
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Warn().Err(err).Msg("event bus close failed")
		}
	}()

	store, err := auth.NewSessionStore(rootCtx, cfg.Auth)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Warn().Err(err).Msg("session store close failed")
		}
	}()

	sessions := auth.NewSessionManager(store, cfg.Auth, bus)

	tasks := task.NewManager(rootCtx)
	registry := gameserver.NewRegistry(cfg.GameServer.Keys)
	hub := gameserver.NewHub(cfg.GameServer, registry, tasks, bus, nil)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(cfg, sessions, hub),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout

	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewSessionCleanupService(store, cfg.Auth.CleanupInterval))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("listening")
	treeErr := <-tree.ServeBackground(rootCtx)

	// The signal (or tree failure) has arrived. Drain game-server
	// connections through the task manager before releasing resources.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := tasks.Shutdown(drainCtx); err != nil {
		logging.Warn().Err(err).Msg("task drain incomplete")
	}

	if treeErr != nil && rootCtx.Err() == nil {
		return treeErr
	}
	logging.Info().Msg("kz-api stopped")
	return nil
}
