// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package handlers provides the core command set.
package handlers

import (
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
)

// Register installs the core command set into the registry. The help
// command lists entries in registration order, so the order here is
// the order players see.
func Register(reg *command.Registry, engine *core.Engine) error {
	entries := moveEntries(engine)
	entries = append(entries,
		lookEntry(engine),
		inventoryEntry(engine),
		getEntry(engine),
		dropEntry(engine),
		sayEntry(engine),
		yellEntry(engine),
		whisperEntry(engine),
		chatEntry(engine),
		whoEntry(engine),
		statusEntry(engine),
		helpEntry(reg),
	)
	for _, entry := range entries {
		if err := reg.Register(entry); err != nil {
			return err
		}
	}
	return nil
}
