// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/duskmud/duskmud/internal/api"
	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/command/handlers"
	"github.com/duskmud/duskmud/internal/config"
	"github.com/duskmud/duskmud/internal/core"
	"github.com/duskmud/duskmud/internal/logging"
)

// Shutdown grace period for in-flight requests.
const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game server",
		Long: `Start the game server: loads the world definition, connects to the
database, and serves the game API plus metrics and health endpoints.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, autoMigrate, nil)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "apply pending schema migrations before serving")

	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, autoMigrate bool, deps *ServeDeps) error {
	if deps == nil {
		deps = &ServeDeps{}
	}
	deps.applyDefaults()

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("duskmud", version, cfg.Log.Format, cfg.Log.SlogLevel())

	slog.Info("starting server",
		"http_addr", cfg.Listen.HTTP,
		"metrics_addr", cfg.Listen.Metrics,
		"world_path", cfg.World.Path,
	)

	// A broken world graph must abort startup, never run partially.
	w, err := deps.WorldLoader(cfg.World.Path)
	if err != nil {
		return oops.With("operation", "load world").Wrap(err)
	}
	spawn := w.SpawnRoom()
	if cfg.World.SpawnRoom != "" {
		if _, ok := w.Room(cfg.World.SpawnRoom); !ok {
			return oops.In("config").
				Code("CONFIG_INVALID").
				With("spawn_room", cfg.World.SpawnRoom).
				Errorf("configured spawn room is not defined in the world")
		}
		spawn = cfg.World.SpawnRoom
	}
	slog.Info("world loaded", "world", w.String(), "spawn", spawn)

	databaseURL := cfg.Database.URL
	if databaseURL == "" {
		databaseURL = deps.DatabaseURLGetter()
	}
	if databaseURL == "" {
		return oops.In("config").
			Code("CONFIG_INVALID").
			Errorf("database.url or the DATABASE_URL environment variable is required")
	}

	if autoMigrate {
		slog.Info("applying pending migrations")
		if err := deps.AutoMigrator(databaseURL); err != nil {
			return oops.With("operation", "auto-migrate").Wrap(err)
		}
	}

	repos, err := deps.RepoFactory(ctx, databaseURL)
	if err != nil {
		return oops.With("operation", "open store").Wrap(err)
	}
	if repos.Close != nil {
		defer repos.Close()
	}
	slog.Info("connected to database")

	registry := auth.NewRegistry(repos.Sessions)
	accounts := auth.NewService(repos.Players, registry, spawn)
	broadcaster := core.NewBroadcaster()
	engine := core.NewEngine(w, repos.Players, repos.Chat, registry, broadcaster,
		core.WithRecentLimit(cfg.Chat.RecentLimit))

	cmdRegistry := command.NewRegistry()
	if err := handlers.Register(cmdRegistry, engine); err != nil {
		return oops.With("operation", "register commands").Wrap(err)
	}
	dispatcher, err := command.NewDispatcher(cmdRegistry)
	if err != nil {
		return err
	}
	svc, err := api.NewService(accounts, registry, engine, dispatcher)
	if err != nil {
		return err
	}

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Readiness flips once every component below is serving.
	var ready atomic.Bool

	var obsServer ObservabilityServer
	if cfg.Listen.Metrics != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Listen.Metrics, ready.Load)
		command.RegisterMetrics(obsServer.Registry())
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.With("operation", "start observability server").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
		slog.Info("observability server started", "addr", obsServer.Addr())
	}

	gameServer := deps.GameServerFactory(cfg.Listen.HTTP, svc)
	gameErrChan, err := gameServer.Start()
	if err != nil {
		stopServer(obsServer, "observability")
		return oops.With("operation", "start game server").Wrap(err)
	}
	go monitorServerErrors(ctx, cancel, gameErrChan, "game-http")

	ready.Store(true)
	cmd.Println("Server started on " + gameServer.Addr())
	slog.Info("server ready", "addr", gameServer.Addr())

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	ready.Store(false)
	slog.Info("shutting down...")

	stopServer(gameServer, "game-http")
	stopServer(obsServer, "observability")

	slog.Info("shutdown complete")
	return nil
}

// stoppable is the common slice of GameServer and ObservabilityServer
// used during shutdown.
type stoppable interface {
	Stop(ctx context.Context) error
}

// stopServer stops a server with the shutdown grace period, tolerating
// nil and logging rather than failing: shutdown keeps going.
func stopServer(s stoppable, name string) {
	if s == nil {
		return
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := s.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping server", "server", name, "error", err)
	}
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error, so a server failure triggers graceful shutdown of
// the whole process. It exits when an error arrives, the channel
// closes, or the context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
