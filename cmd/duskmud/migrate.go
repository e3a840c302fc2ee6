// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/duskmud/duskmud/internal/config"
	"github.com/duskmud/duskmud/internal/store"
)

// NewMigrateCmd creates the migrate subcommand and its actions.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long:  `Apply, roll back, or inspect the schema migrations embedded in the binary.`,
	}
	cmd.PersistentFlags().String("database-url", "", "PostgreSQL connection URL (falls back to DATABASE_URL)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				cmd.Println("Running migrations...")
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				cmd.Println("Rolling back all migrations...")
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Rollback completed")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the current migration version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if version == 0 {
					cmd.Println("No migrations applied")
					return nil
				}
				name, err := store.MigrationName(version)
				if err != nil {
					return err
				}
				if dirty {
					cmd.Printf("Version: %d (%s) DIRTY - fix the database and use force\n", version, name)
					return nil
				}
				cmd.Printf("Version: %d (%s)\n", version, name)
				return nil
			})
		},
	})

	return cmd
}

// withMigrator resolves the database URL, builds a migrator, runs fn,
// and closes the migrator afterwards.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	databaseURL, err := resolveDatabaseURL(cmd)
	if err != nil {
		return err
	}

	m, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck // close error after the action ran is not actionable

	return fn(m)
}

// resolveDatabaseURL reads the database URL from, in order: the
// --database-url flag, the config file, and the DATABASE_URL
// environment variable.
func resolveDatabaseURL(cmd *cobra.Command) (string, error) {
	if flagURL, err := cmd.Flags().GetString("database-url"); err == nil && flagURL != "" {
		return flagURL, nil
	}

	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return "", err
	}
	if cfg.Database.URL != "" {
		return cfg.Database.URL, nil
	}

	if envURL := os.Getenv("DATABASE_URL"); envURL != "" {
		return envURL, nil
	}
	return "", oops.In("config").
		Code("CONFIG_INVALID").
		Errorf("database.url or the DATABASE_URL environment variable is required")
}
