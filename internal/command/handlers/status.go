// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// statusEntry reports the actor's role, location, and inventory.
func statusEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "status",
		Usage:      "status",
		Help:       "Show your role, room, and inventory",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, actor core.Actor, _ string) (core.Result, error) {
			return engine.Status(ctx, actor)
		},
	}
}
