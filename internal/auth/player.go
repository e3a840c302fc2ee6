// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package auth

import (
	"context"
	"time"

	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/access"
)

// Username validation constraints.
const (
	MinUsernameLength = 2
	MaxUsernameLength = 20
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// Player represents a player account. The password digest stays inside
// the repository; it is deliberately absent here.
type Player struct {
	Username    string
	Role        access.Role
	CurrentRoom string
	Inventory   []string // item ids
	Active      bool
	CreatedAt   time.Time
	LastLogin   *time.Time // nil until the first successful login
}

// ValidateUsername checks a username against registration rules.
// Callers should trim whitespace first; length is counted in bytes.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return oops.Code("VALIDATION").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("VALIDATION").
			With("max", MaxUsernameLength).
			Errorf("username must be no more than %d characters long", MaxUsernameLength)
	}
	return nil
}

// ValidatePassword checks a password against registration rules.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return oops.Code("VALIDATION").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// PlayerRepository manages player persistence. Implementations own
// password hashing: plaintext passwords go in, verdicts come out, and
// digests never cross this interface.
type PlayerRepository interface {
	// GetByUsername retrieves a player by username.
	// Returns ErrNotFound if no such player exists.
	GetByUsername(ctx context.Context, username string) (*Player, error)

	// Create stores a new player with the given password.
	// Returns ErrUsernameTaken if the username already exists.
	Create(ctx context.Context, player *Player, password string) error

	// VerifyCredentials reports whether the password matches the
	// player's stored digest. An unknown username verifies false with
	// no error, indistinguishable from a wrong password.
	VerifyCredentials(ctx context.Context, username, password string) (bool, error)

	// SetCurrentRoom moves the player's persisted position.
	SetCurrentRoom(ctx context.Context, username, roomID string) error

	// SetInventory replaces the player's inventory wholesale.
	SetInventory(ctx context.Context, username string, items []string) error

	// SetRole changes the player's role.
	SetRole(ctx context.Context, username string, role access.Role) error

	// SetActive flips the account's active flag.
	SetActive(ctx context.Context, username string, active bool) error

	// SetPassword replaces the player's password.
	SetPassword(ctx context.Context, username, password string) error

	// UpdateLastLogin stamps the player's last successful login.
	UpdateLastLogin(ctx context.Context, username string) error

	// ListByCurrentRoom returns the usernames of players whose
	// persisted position is the given room.
	ListByCurrentRoom(ctx context.Context, roomID string) ([]string, error)
}

// SessionMirrorRepository persists an audit copy of live sessions.
// The mirror is write-only from the registry's point of view: it is
// never read back to authenticate, and failures must not break logins.
type SessionMirrorRepository interface {
	// Upsert records a login, replacing any previous row for the user.
	Upsert(ctx context.Context, username, tokenHash string) error

	// TouchActivity bumps the mirrored last-activity timestamp.
	TouchActivity(ctx context.Context, username string) error

	// Delete removes the mirrored session row, if any.
	Delete(ctx context.Context, username string) error
}
