// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// helpEntry renders the command listing from the registry itself, so
// it never drifts from what is actually registered.
func helpEntry(reg *command.Registry) command.Entry {
	return command.Entry{
		Name:       "help",
		Usage:      "help",
		Help:       "Show this help message",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			var b strings.Builder
			b.WriteString("[Available Commands]\n")
			for _, entry := range reg.All() {
				usage := entry.Usage
				if usage == "" {
					usage = entry.Name
				}
				fmt.Fprintf(&b, "  %s - %s\n", usage, entry.Help)
			}
			return core.Result{Success: true, Message: b.String()}, nil
		},
	}
}
