// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/duskmud/duskmud/internal/access"
)

// MemoryPlayerRepository is an in-memory PlayerRepository for tests and
// local experiments. Passwords are compared directly rather than
// hashed; nothing here is meant to survive a process.
type MemoryPlayerRepository struct {
	mu        sync.RWMutex
	players   map[string]*Player
	passwords map[string]string
}

// NewMemoryPlayerRepository creates an empty in-memory repository.
func NewMemoryPlayerRepository() *MemoryPlayerRepository {
	return &MemoryPlayerRepository{
		players:   make(map[string]*Player),
		passwords: make(map[string]string),
	}
}

func copyPlayer(p *Player) *Player {
	c := *p
	c.Inventory = make([]string, len(p.Inventory))
	copy(c.Inventory, p.Inventory)
	if p.LastLogin != nil {
		t := *p.LastLogin
		c.LastLogin = &t
	}
	return &c
}

// GetByUsername implements PlayerRepository.
func (m *MemoryPlayerRepository) GetByUsername(_ context.Context, username string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[username]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPlayer(p), nil
}

// Create implements PlayerRepository.
func (m *MemoryPlayerRepository) Create(_ context.Context, player *Player, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[player.Username]; exists {
		return ErrUsernameTaken
	}

	stored := copyPlayer(player)
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.players[player.Username] = stored
	m.passwords[player.Username] = password
	return nil
}

// VerifyCredentials implements PlayerRepository.
func (m *MemoryPlayerRepository) VerifyCredentials(_ context.Context, username, password string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.passwords[username]
	if !ok {
		return false, nil
	}
	return stored == password, nil
}

func (m *MemoryPlayerRepository) update(username string, fn func(*Player)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[username]
	if !ok {
		return ErrNotFound
	}
	fn(p)
	return nil
}

// SetCurrentRoom implements PlayerRepository.
func (m *MemoryPlayerRepository) SetCurrentRoom(_ context.Context, username, roomID string) error {
	return m.update(username, func(p *Player) { p.CurrentRoom = roomID })
}

// SetInventory implements PlayerRepository.
func (m *MemoryPlayerRepository) SetInventory(_ context.Context, username string, items []string) error {
	copied := make([]string, len(items))
	copy(copied, items)
	return m.update(username, func(p *Player) { p.Inventory = copied })
}

// SetRole implements PlayerRepository.
func (m *MemoryPlayerRepository) SetRole(_ context.Context, username string, role access.Role) error {
	return m.update(username, func(p *Player) { p.Role = role })
}

// SetActive implements PlayerRepository.
func (m *MemoryPlayerRepository) SetActive(_ context.Context, username string, active bool) error {
	return m.update(username, func(p *Player) { p.Active = active })
}

// SetPassword implements PlayerRepository.
func (m *MemoryPlayerRepository) SetPassword(_ context.Context, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.players[username]; !ok {
		return ErrNotFound
	}
	m.passwords[username] = password
	return nil
}

// UpdateLastLogin implements PlayerRepository.
func (m *MemoryPlayerRepository) UpdateLastLogin(_ context.Context, username string) error {
	now := time.Now()
	return m.update(username, func(p *Player) { p.LastLogin = &now })
}

// ListByCurrentRoom implements PlayerRepository. Results are sorted so
// tests see a stable order.
func (m *MemoryPlayerRepository) ListByCurrentRoom(_ context.Context, roomID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var usernames []string
	for _, p := range m.players {
		if p.CurrentRoom == roomID {
			usernames = append(usernames, p.Username)
		}
	}
	sort.Strings(usernames)
	return usernames, nil
}

var _ PlayerRepository = (*MemoryPlayerRepository)(nil)

// MirrorRow is one audit row in the in-memory session mirror.
type MirrorRow struct {
	TokenHash    string
	CreatedAt    time.Time
	LastActivity time.Time
}

// MemorySessionMirror is an in-memory SessionMirrorRepository for tests.
type MemorySessionMirror struct {
	mu   sync.RWMutex
	rows map[string]*MirrorRow
}

// NewMemorySessionMirror creates an empty in-memory mirror.
func NewMemorySessionMirror() *MemorySessionMirror {
	return &MemorySessionMirror{rows: make(map[string]*MirrorRow)}
}

// Upsert implements SessionMirrorRepository.
func (m *MemorySessionMirror) Upsert(_ context.Context, username, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.rows[username] = &MirrorRow{TokenHash: tokenHash, CreatedAt: now, LastActivity: now}
	return nil
}

// TouchActivity implements SessionMirrorRepository.
func (m *MemorySessionMirror) TouchActivity(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row, ok := m.rows[username]; ok {
		row.LastActivity = time.Now()
	}
	return nil
}

// Delete implements SessionMirrorRepository.
func (m *MemorySessionMirror) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.rows, username)
	return nil
}

// Row returns a copy of the mirrored row for a user, or nil.
func (m *MemorySessionMirror) Row(username string) *MirrorRow {
	m.mu.RLock()
	defer m.mu.RUnlock()

	row, ok := m.rows[username]
	if !ok {
		return nil
	}
	c := *row
	return &c
}

var _ SessionMirrorRepository = (*MemorySessionMirror)(nil)
