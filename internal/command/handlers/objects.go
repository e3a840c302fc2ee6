// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// getEntry picks an item up from the current room's catalog. The
// catalog is never depleted, so two players grabbing the same item is
// normal, not a conflict.
func getEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "get",
		Aliases:    []string{"take"},
		Usage:      "get/take <item>",
		Help:       "Pick up an item",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, actor core.Actor, args string) (core.Result, error) {
			if strings.TrimSpace(args) == "" {
				return core.Failf("Get what?"), nil
			}
			return engine.PickUp(ctx, actor, args)
		},
	}
}

// dropEntry removes an item from the inventory. Dropped items vanish
// rather than landing in the room.
func dropEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "drop",
		Usage:      "drop <item>",
		Help:       "Drop an item",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, actor core.Actor, args string) (core.Result, error) {
			if strings.TrimSpace(args) == "" {
				return core.Failf("Drop what?"), nil
			}
			return engine.Drop(ctx, actor, args)
		},
	}
}

// inventoryEntry lists what the actor is carrying.
func inventoryEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "inventory",
		Aliases:    []string{"inv", "i"},
		Usage:      "inventory/inv",
		Help:       "View your inventory",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, actor core.Actor, _ string) (core.Result, error) {
			return engine.Inventory(ctx, actor)
		},
	}
}
