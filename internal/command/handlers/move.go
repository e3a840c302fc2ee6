// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// moveEntries returns one command per cardinal direction. Bare
// direction words are the movement commands; the single-letter
// shorthands are aliases so "n" and "north" dispatch identically.
func moveEntries(engine *core.Engine) []command.Entry {
	directions := []struct {
		name  string
		alias string
	}{
		{"north", "n"},
		{"south", "s"},
		{"east", "e"},
		{"west", "w"},
	}

	entries := make([]command.Entry, 0, len(directions))
	for _, dir := range directions {
		entries = append(entries, command.Entry{
			Name:       dir.name,
			Aliases:    []string{dir.alias},
			Usage:      dir.name + "/" + dir.alias,
			Help:       "Move " + dir.name,
			Permission: access.PermPlayGame,
			Handler: func(ctx context.Context, actor core.Actor, _ string) (core.Result, error) {
				return engine.Move(ctx, actor, dir.name)
			},
		})
	}
	return entries
}
