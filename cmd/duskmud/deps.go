// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package main

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/duskmud/duskmud/internal/api"
	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/core"
	"github.com/duskmud/duskmud/internal/httpapi"
	"github.com/duskmud/duskmud/internal/observability"
	"github.com/duskmud/duskmud/internal/store"
	"github.com/duskmud/duskmud/internal/world"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// DatabaseURLGetter returns the fallback database URL when the
	// config leaves database.url empty.
	// Default: reads from DATABASE_URL environment variable
	DatabaseURLGetter func() string

	// WorldLoader loads the world definition. An empty path loads the
	// world embedded in the binary.
	// Default: world.LoadFile / world.LoadDefault
	WorldLoader func(path string) (*world.World, error)

	// RepoFactory opens the persistence layer.
	// Default: a pgxpool-backed store via store.Open
	RepoFactory func(ctx context.Context, databaseURL string) (*Repos, error)

	// AutoMigrator applies pending schema migrations at startup.
	// Default: store.NewMigrator + Up
	AutoMigrator func(databaseURL string) error

	// GameServerFactory creates the game HTTP server.
	// Default: httpapi.NewServer
	GameServerFactory func(addr string, svc *api.Service) GameServer

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer
}

// Repos bundles the three repositories the engine and registry consume
// plus the handle that releases their shared connection pool.
type Repos struct {
	Players  auth.PlayerRepository
	Sessions auth.SessionMirrorRepository
	Chat     core.ChatRepository
	Close    func()
}

// GameServer interface wraps the methods used from httpapi.Server.
type GameServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// ObservabilityServer interface wraps the methods used from
// observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Registry() *prometheus.Registry
}

// applyDefaults fills nil fields with the production implementations.
func (deps *ServeDeps) applyDefaults() {
	if deps.DatabaseURLGetter == nil {
		deps.DatabaseURLGetter = func() string {
			return os.Getenv("DATABASE_URL")
		}
	}
	if deps.WorldLoader == nil {
		deps.WorldLoader = func(path string) (*world.World, error) {
			if path == "" {
				return world.LoadDefault()
			}
			return world.LoadFile(path)
		}
	}
	if deps.RepoFactory == nil {
		deps.RepoFactory = openPostgresRepos
	}
	if deps.AutoMigrator == nil {
		deps.AutoMigrator = runMigrationsUp
	}
	if deps.GameServerFactory == nil {
		deps.GameServerFactory = func(addr string, svc *api.Service) GameServer {
			return httpapi.NewServer(addr, svc)
		}
	}
	if deps.ObservabilityServerFactory == nil {
		deps.ObservabilityServerFactory = func(addr string, readinessChecker observability.ReadinessChecker) ObservabilityServer {
			return observability.NewServer(addr, readinessChecker)
		}
	}
}

// openPostgresRepos connects a pgx pool and builds the production
// repositories on it.
func openPostgresRepos(ctx context.Context, databaseURL string) (*Repos, error) {
	pool, err := store.Open(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	return &Repos{
		Players:  store.NewPostgresPlayerRepository(pool, auth.NewArgon2idHasher()),
		Sessions: store.NewPostgresSessionMirror(pool),
		Chat:     store.NewPostgresChatStore(pool),
		Close:    pool.Close,
	}, nil
}

// runMigrationsUp applies all pending migrations and releases the
// migrator's connections.
func runMigrationsUp(databaseURL string) error {
	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // close error after a successful Up is not actionable
	return m.Up()
}
