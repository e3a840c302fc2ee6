// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/auth"
)

// dummyDigest absorbs the verification cost when the username does not
// exist, so credential checks take the same time either way.
const dummyDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// PostgresPlayerRepository implements auth.PlayerRepository using
// PostgreSQL. Password digests live only in this package and the
// players table; they never ride on the Player struct.
type PostgresPlayerRepository struct {
	pool   poolIface
	hasher auth.PasswordHasher
}

// NewPostgresPlayerRepository creates a player repository on the pool.
func NewPostgresPlayerRepository(pool poolIface, hasher auth.PasswordHasher) *PostgresPlayerRepository {
	return &PostgresPlayerRepository{pool: pool, hasher: hasher}
}

var _ auth.PlayerRepository = (*PostgresPlayerRepository)(nil)

// Create stores a new player with the given password.
func (r *PostgresPlayerRepository) Create(ctx context.Context, player *auth.Player, password string) error {
	digest, err := r.hasher.Hash(password)
	if err != nil {
		return oops.Code("PLAYER_CREATE_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	inv := player.Inventory
	if inv == nil {
		inv = []string{}
	}
	invJSON, err := json.Marshal(inv)
	if err != nil {
		return oops.Code("PLAYER_CREATE_FAILED").
			With("operation", "marshal inventory").
			Wrap(err)
	}

	createdAt := player.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO players (
			username, password_digest, role, current_room,
			inventory, active, created_at, last_login
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		player.Username,
		digest,
		player.Role.String(),
		player.CurrentRoom,
		invJSON,
		player.Active,
		createdAt,
		player.LastLogin,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("PLAYER_EXISTS").
				With("username", player.Username).
				Wrap(auth.ErrUsernameTaken)
		}
		return oops.Code("PLAYER_CREATE_FAILED").
			With("operation", "insert player").
			With("username", player.Username).
			Wrap(err)
	}
	return nil
}

// GetByUsername retrieves a player by exact username.
func (r *PostgresPlayerRepository) GetByUsername(ctx context.Context, username string) (*auth.Player, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT username, role, current_room, inventory, active, created_at, last_login
		FROM players
		WHERE username = $1
	`, username)

	player, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PLAYER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PLAYER_GET_FAILED").
			With("operation", "get player by username").
			With("username", username).
			Wrap(err)
	}
	return player, nil
}

// VerifyCredentials reports whether the password matches the stored
// digest. Unknown usernames verify false with no error.
func (r *PostgresPlayerRepository) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	var digest string
	err := r.pool.QueryRow(ctx,
		`SELECT password_digest FROM players WHERE username = $1`,
		username).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		// Burn the same hashing cost as a real check so unknown
		// usernames are not distinguishable by timing.
		_, _ = r.hasher.Verify(password, dummyDigest) //nolint:errcheck // verdict deliberately discarded
		return false, nil
	}
	if err != nil {
		return false, oops.Code("PLAYER_VERIFY_FAILED").
			With("operation", "get password digest").
			Wrap(err)
	}

	ok, err := r.hasher.Verify(password, digest)
	if err != nil {
		return false, oops.Code("PLAYER_VERIFY_FAILED").
			With("operation", "verify digest").
			With("username", username).
			Wrap(err)
	}
	return ok, nil
}

// update runs a single-row UPDATE and maps zero affected rows to
// auth.ErrNotFound.
func (r *PostgresPlayerRepository) update(ctx context.Context, op, username, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").
			With("operation", op).
			With("username", username).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PLAYER_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetCurrentRoom moves the player's persisted position.
func (r *PostgresPlayerRepository) SetCurrentRoom(ctx context.Context, username, roomID string) error {
	return r.update(ctx, "set current room", username,
		`UPDATE players SET current_room = $2 WHERE username = $1`, username, roomID)
}

// SetInventory replaces the player's inventory wholesale.
func (r *PostgresPlayerRepository) SetInventory(ctx context.Context, username string, items []string) error {
	if items == nil {
		items = []string{}
	}
	invJSON, err := json.Marshal(items)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").
			With("operation", "marshal inventory").
			With("username", username).
			Wrap(err)
	}
	return r.update(ctx, "set inventory", username,
		`UPDATE players SET inventory = $2 WHERE username = $1`, username, invJSON)
}

// SetRole changes the player's role.
func (r *PostgresPlayerRepository) SetRole(ctx context.Context, username string, role access.Role) error {
	return r.update(ctx, "set role", username,
		`UPDATE players SET role = $2 WHERE username = $1`, username, role.String())
}

// SetActive flips the account's active flag.
func (r *PostgresPlayerRepository) SetActive(ctx context.Context, username string, active bool) error {
	return r.update(ctx, "set active", username,
		`UPDATE players SET active = $2 WHERE username = $1`, username, active)
}

// SetPassword replaces the player's password.
func (r *PostgresPlayerRepository) SetPassword(ctx context.Context, username, password string) error {
	digest, err := r.hasher.Hash(password)
	if err != nil {
		return oops.Code("PLAYER_UPDATE_FAILED").
			With("operation", "hash password").
			With("username", username).
			Wrap(err)
	}
	return r.update(ctx, "set password", username,
		`UPDATE players SET password_digest = $2 WHERE username = $1`, username, digest)
}

// UpdateLastLogin stamps the player's last successful login.
func (r *PostgresPlayerRepository) UpdateLastLogin(ctx context.Context, username string) error {
	return r.update(ctx, "update last login", username,
		`UPDATE players SET last_login = $2 WHERE username = $1`, username, time.Now().UTC())
}

// ListByCurrentRoom returns the usernames persisted in a room, sorted
// so callers see a stable order.
func (r *PostgresPlayerRepository) ListByCurrentRoom(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT username FROM players WHERE current_room = $1 ORDER BY username`,
		roomID)
	if err != nil {
		return nil, oops.Code("PLAYER_LIST_FAILED").
			With("operation", "list players by room").
			With("room_id", roomID).
			Wrap(err)
	}
	defer rows.Close()

	var usernames []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, oops.Code("PLAYER_LIST_FAILED").
				With("operation", "scan username").
				With("room_id", roomID).
				Wrap(err)
		}
		usernames = append(usernames, username)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PLAYER_LIST_FAILED").
			With("operation", "iterate usernames").
			With("room_id", roomID).
			Wrap(err)
	}
	return usernames, nil
}

// scanPlayer scans a single row into a Player. Callers handle
// pgx.ErrNoRows themselves.
func scanPlayer(row pgx.Row) (*auth.Player, error) {
	var (
		p        auth.Player
		roleName string
		invJSON  []byte
	)
	err := row.Scan(&p.Username, &roleName, &p.CurrentRoom, &invJSON, &p.Active, &p.CreatedAt, &p.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("PLAYER_SCAN_FAILED").Wrap(err)
	}

	role, err := access.ParseRole(roleName)
	if err != nil {
		return nil, oops.Code("PLAYER_INVALID_ROLE").
			With("role", roleName).
			Wrap(err)
	}
	p.Role = role

	if len(invJSON) > 0 {
		if err := json.Unmarshal(invJSON, &p.Inventory); err != nil {
			return nil, oops.Code("PLAYER_INVALID_INVENTORY").
				With("username", p.Username).
				Wrap(err)
		}
	}
	if p.Inventory == nil {
		p.Inventory = []string{}
	}
	return &p, nil
}
