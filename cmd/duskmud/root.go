// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the DuskMUD CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "duskmud",
		Short: "DuskMUD - a multi-player text-world server",
		Long: `DuskMUD is a session-authenticated multi-player text-world server:
players explore a shared world of rooms and items, chat room by room,
and administer accounts through role-gated commands.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())

	return cmd
}
