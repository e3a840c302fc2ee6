// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/access"
)

// Identity is the validated (username, role) pair handed to every
// operation downstream of authentication.
type Identity struct {
	Username string
	Role     access.Role
}

// Session represents a logged-in player's live presence.
type Session struct {
	Token        string
	Username     string
	Role         access.Role
	CreatedAt    time.Time
	LastActivity time.Time
}

// copySession returns a defensive copy so callers cannot mutate
// registry state.
func copySession(s *Session) *Session {
	c := *s
	return &c
}

// Registry is the in-memory session registry and the sole authority on
// authentication. Tokens index identities; a reverse index enforces the
// one-live-session-per-account rule. Everything is lost on restart,
// which is the intended behavior: a restart logs everyone out.
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]*Session
	byUser  map[string]string // username -> token
	mirror  SessionMirrorRepository
}

// NewRegistry creates a session registry. The mirror may be nil, in
// which case no audit rows are written.
func NewRegistry(mirror SessionMirrorRepository) *Registry {
	return &Registry{
		byToken: make(map[string]*Session),
		byUser:  make(map[string]string),
		mirror:  mirror,
	}
}

// Create installs a fresh session for the user and returns its token.
// If the user already has a live session it is evicted first, under the
// same lock, so there is no window with two valid tokens. The mirror
// write happens after the lock is released and is best-effort.
func (r *Registry) Create(ctx context.Context, username string, role access.Role) (string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := &Session{
		Token:        token,
		Username:     username,
		Role:         role,
		CreatedAt:    now,
		LastActivity: now,
	}

	r.mu.Lock()
	if old, exists := r.byUser[username]; exists {
		delete(r.byToken, old)
	}
	r.byToken[token] = session
	r.byUser[username] = token
	r.mu.Unlock()

	if r.mirror != nil {
		if err := r.mirror.Upsert(ctx, username, tokenHash); err != nil {
			slog.Warn("session mirror upsert failed",
				"username", username,
				"error", err,
			)
		}
	}

	return token, nil
}

// Validate resolves a token to the identity behind it and refreshes the
// session's last-activity time. An unknown token is an UNAUTHENTICATED
// error; this is the only place tokens are checked.
func (r *Registry) Validate(ctx context.Context, token string) (Identity, error) {
	r.mu.Lock()
	session, exists := r.byToken[token]
	if !exists {
		r.mu.Unlock()
		return Identity{}, oops.In("auth").
			Code("UNAUTHENTICATED").
			Errorf("unknown session token")
	}
	session.LastActivity = time.Now()
	identity := Identity{Username: session.Username, Role: session.Role}
	r.mu.Unlock()

	if r.mirror != nil {
		if err := r.mirror.TouchActivity(ctx, identity.Username); err != nil {
			slog.Warn("session mirror activity update failed",
				"username", identity.Username,
				"error", err,
			)
		}
	}

	return identity, nil
}

// Invalidate removes a session. Unknown tokens are a no-op so that
// logout is idempotent.
func (r *Registry) Invalidate(ctx context.Context, token string) {
	r.mu.Lock()
	session, exists := r.byToken[token]
	if exists {
		delete(r.byToken, token)
		delete(r.byUser, session.Username)
	}
	r.mu.Unlock()

	if !exists {
		slog.Debug("invalidate called for unknown token")
		return
	}

	if r.mirror != nil {
		if err := r.mirror.Delete(ctx, session.Username); err != nil {
			slog.Warn("session mirror delete failed",
				"username", session.Username,
				"error", err,
			)
		}
	}
}

// EvictUser removes the user's live session, if any. Used when an
// account is deactivated so the kick takes effect immediately.
func (r *Registry) EvictUser(ctx context.Context, username string) bool {
	r.mu.Lock()
	token, exists := r.byUser[username]
	if exists {
		delete(r.byToken, token)
		delete(r.byUser, username)
	}
	r.mu.Unlock()

	if !exists {
		return false
	}

	if r.mirror != nil {
		if err := r.mirror.Delete(ctx, username); err != nil {
			slog.Warn("session mirror delete failed",
				"username", username,
				"error", err,
			)
		}
	}

	return true
}

// Get returns a copy of the session behind a token, or nil if none
// exists. It does not refresh activity; use Validate for that.
func (r *Registry) Get(token string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.byToken[token]
	if !exists {
		return nil
	}
	return copySession(session)
}

// IsActive reports whether the user currently holds a live session.
func (r *Registry) IsActive(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.byUser[username]
	return exists
}

// ActiveUsernames returns a snapshot of users with live sessions, in no
// particular order.
func (r *Registry) ActiveUsernames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, 0, len(r.byUser))
	for username := range r.byUser {
		result = append(result, username)
	}
	return result
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byToken)
}
