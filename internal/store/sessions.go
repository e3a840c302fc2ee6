// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package store

import (
	"context"

	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/auth"
)

// PostgresSessionMirror implements auth.SessionMirrorRepository using
// PostgreSQL. The table is an audit copy of the in-memory session
// registry; it is written on login, activity, and logout, and never
// read back to authenticate anyone.
type PostgresSessionMirror struct {
	pool poolIface
}

// NewPostgresSessionMirror creates a session mirror on the pool.
func NewPostgresSessionMirror(pool poolIface) *PostgresSessionMirror {
	return &PostgresSessionMirror{pool: pool}
}

var _ auth.SessionMirrorRepository = (*PostgresSessionMirror)(nil)

// Upsert records a login, replacing any previous row for the user.
func (m *PostgresSessionMirror) Upsert(ctx context.Context, username, tokenHash string) error {
	_, err := m.pool.Exec(ctx, `
		INSERT INTO sessions (username, token_hash, created_at, last_activity)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (username) DO UPDATE
		SET token_hash = EXCLUDED.token_hash, created_at = now(), last_activity = now()
	`, username, tokenHash)
	if err != nil {
		return oops.Code("SESSION_MIRROR_FAILED").
			With("operation", "upsert session").
			With("username", username).
			Wrap(err)
	}
	return nil
}

// TouchActivity bumps the mirrored last-activity timestamp. A missing
// row is not an error; the session may have been evicted meanwhile.
func (m *PostgresSessionMirror) TouchActivity(ctx context.Context, username string) error {
	_, err := m.pool.Exec(ctx,
		`UPDATE sessions SET last_activity = now() WHERE username = $1`,
		username)
	if err != nil {
		return oops.Code("SESSION_MIRROR_FAILED").
			With("operation", "touch activity").
			With("username", username).
			Wrap(err)
	}
	return nil
}

// Delete removes the mirrored session row, if any.
func (m *PostgresSessionMirror) Delete(ctx context.Context, username string) error {
	_, err := m.pool.Exec(ctx,
		`DELETE FROM sessions WHERE username = $1`,
		username)
	if err != nil {
		return oops.Code("SESSION_MIRROR_FAILED").
			With("operation", "delete session").
			With("username", username).
			Wrap(err)
	}
	return nil
}
