// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package command provides the command registry, parser, and dispatch system.
package command

import (
	"context"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/core"
)

// Handler executes a game command for an actor. args is everything
// after the command name with internal whitespace preserved. Game
// failures (bad direction, missing item) come back as failure Results;
// the error return carries only storage and infrastructure faults.
type Handler func(ctx context.Context, actor core.Actor, args string) (core.Result, error)

// Entry represents a registered command.
type Entry struct {
	Name       string            // canonical name (e.g. "north")
	Aliases    []string          // shorthands resolved to this entry (e.g. "n")
	Usage      string            // display form for help (e.g. "get/take <item>")
	Help       string            // one-line description
	Permission access.Permission // required to execute
	Handler    Handler
}
