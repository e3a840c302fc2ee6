// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/config"
	"github.com/duskmud/duskmud/internal/store"
	"github.com/duskmud/duskmud/internal/world"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	username string
	password string
	timeout  time.Duration
}

// Validate checks that the configuration is valid.
func (cfg *seedConfig) Validate() error {
	if err := auth.ValidateUsername(cfg.username); err != nil {
		return err
	}
	return auth.ValidatePassword(cfg.password)
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial superuser account",
		Long: `Runs migrations, sanity-loads the world definition, and creates the
initial superuser account at the spawn room.
This command is idempotent - it will not create duplicates if run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.username, "superuser", "admin", "username of the initial superuser account")
	cmd.Flags().StringVar(&cfg.password, "password", "", "password of the initial superuser account (required)")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")
	cmd.Flags().String("database-url", "", "PostgreSQL connection URL (falls back to DATABASE_URL)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	fileCfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	// Sanity-load the world before touching the database so a broken
	// world file fails the seed the same way it would fail serve.
	var w *world.World
	if fileCfg.World.Path == "" {
		w, err = world.LoadDefault()
	} else {
		w, err = world.LoadFile(fileCfg.World.Path)
	}
	if err != nil {
		return oops.With("operation", "load world").Wrap(err)
	}
	spawn := w.SpawnRoom()
	if fileCfg.World.SpawnRoom != "" {
		if _, ok := w.Room(fileCfg.World.SpawnRoom); !ok {
			return oops.In("config").
				Code("CONFIG_INVALID").
				With("spawn_room", fileCfg.World.SpawnRoom).
				Errorf("configured spawn room is not defined in the world")
		}
		spawn = fileCfg.World.SpawnRoom
	}

	// Add timeout to prevent indefinite hangs.
	// Use cmd.Context() to respect SIGINT/SIGTERM signals.
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	if err := runMigrationsUp(databaseURL); err != nil {
		return oops.Code("SEED_FAILED").With("operation", "run migrations").Wrap(err)
	}

	cmd.Println("Connecting to database...")
	pool, err := store.Open(ctx, databaseURL)
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	players := store.NewPostgresPlayerRepository(pool, auth.NewArgon2idHasher())
	superuser := &auth.Player{
		Username:    cfg.username,
		Role:        access.RoleSuperuser,
		CurrentRoom: spawn,
		Inventory:   []string{},
		Active:      true,
	}

	if err := players.Create(ctx, superuser, cfg.password); err != nil {
		if errors.Is(err, auth.ErrUsernameTaken) {
			cmd.Printf("Account %q already exists, skipping seed\n", cfg.username)
			slog.Info("superuser already seeded", "username", cfg.username)
			return nil
		}
		return oops.Code("SEED_FAILED").With("operation", "create superuser").Wrap(err)
	}

	cmd.Printf("Created superuser account %q at room %q\n", cfg.username, spawn)
	slog.Info("superuser created", "username", cfg.username, "room", spawn)

	cmd.Println("Seeding complete!")
	return nil
}
