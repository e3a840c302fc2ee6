// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// lookEntry describes the current room: name, description, items,
// other players present, and exits.
func lookEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "look",
		Aliases:    []string{"l"},
		Usage:      "look",
		Help:       "Examine the current room",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, actor core.Actor, _ string) (core.Result, error) {
			return engine.Look(ctx, actor)
		},
	}
}
