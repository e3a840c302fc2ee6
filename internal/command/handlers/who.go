// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// whoEntry lists every player with a live session.
func whoEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "who",
		Usage:      "who",
		Help:       "List active players",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, actor core.Actor, _ string) (core.Result, error) {
			return engine.Who(ctx)
		},
	}
}
