// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package command

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// Registry manages command registration and lookup, including alias
// resolution. It is thread-safe for concurrent access.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry  // canonical name -> entry
	names   map[string]string // canonical name or alias -> canonical name
	order   []string          // canonical names in registration order, drives help output
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		names:   make(map[string]string),
	}
}

// Register adds a command and its aliases to the registry. Registering
// a name that already exists overwrites it with a warning, last one
// wins; the entry keeps its original position in the help listing.
func (r *Registry) Register(entry Entry) error {
	name := strings.ToLower(strings.TrimSpace(entry.Name))
	if name == "" {
		return oops.In("command").Code(CodeValidation).Errorf("command name cannot be empty")
	}
	if entry.Handler == nil {
		return oops.In("command").Code(CodeValidation).With("command", name).Errorf("command has no handler")
	}
	entry.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		slog.Warn("command conflict: overwriting existing command", "command", name)
		r.dropAliasesOf(name)
	} else {
		r.order = append(r.order, name)
	}

	r.entries[name] = entry
	r.names[name] = name
	for _, alias := range entry.Aliases {
		alias = strings.ToLower(strings.TrimSpace(alias))
		if alias == "" {
			continue
		}
		if owner, taken := r.names[alias]; taken && owner != name {
			slog.Warn("alias conflict: reassigning alias", "alias", alias, "previous", owner, "new", name)
		}
		r.names[alias] = name
	}
	return nil
}

// dropAliasesOf removes every alias pointing at the canonical name.
// Callers hold the write lock.
func (r *Registry) dropAliasesOf(name string) {
	for alias, canonical := range r.names {
		if canonical == name && alias != name {
			delete(r.names, alias)
		}
	}
}

// Get retrieves a command by canonical name or alias.
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.names[strings.ToLower(name)]
	if !ok {
		return Entry{}, false
	}
	entry, ok := r.entries[canonical]
	return entry, ok
}

// All returns every registered command in registration order. The
// returned slice is a copy and safe to modify.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		entries = append(entries, r.entries[name])
	}
	return entries
}

// Len returns the number of registered commands, aliases not counted.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
