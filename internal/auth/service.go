// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/access"
)

// Service coordinates login, registration, and account management.
type Service struct {
	players  PlayerRepository
	registry *Registry
	spawn    string // room new accounts start in
}

// NewService creates an account service.
func NewService(players PlayerRepository, registry *Registry, spawnRoom string) *Service {
	return &Service{
		players:  players,
		registry: registry,
		spawn:    spawnRoom,
	}
}

// LoginResult carries what a successful login produces: the session
// token, the authenticated identity, and the player's persisted room.
type LoginResult struct {
	Token    string
	Identity Identity
	RoomID   string
}

// Login authenticates a player and installs a live session, evicting
// any previous one. Unknown usernames and wrong passwords are
// deliberately indistinguishable. The deactivation check runs after
// credential verification so the error never confirms an account
// exists to someone without its password.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)

	valid, err := s.players.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, oops.With("operation", "verify credentials").Wrap(err)
	}
	if !valid {
		return nil, oops.In("auth").
			Code("AUTH_INVALID_CREDENTIALS").
			Errorf("invalid username or password")
	}

	player, err := s.players.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Deleted between verification and lookup. Same answer as a
			// wrong password.
			return nil, oops.In("auth").
				Code("AUTH_INVALID_CREDENTIALS").
				Errorf("invalid username or password")
		}
		return nil, oops.With("operation", "get player by username").Wrap(err)
	}

	if !player.Active {
		return nil, oops.In("auth").
			Code("AUTH_ACCOUNT_DISABLED").
			With("username", username).
			Errorf("account is deactivated")
	}

	token, err := s.registry.Create(ctx, player.Username, player.Role)
	if err != nil {
		return nil, oops.With("operation", "create session").Wrap(err)
	}

	_ = s.players.UpdateLastLogin(ctx, username) //nolint:errcheck // Best effort, login succeeds regardless

	slog.Info("player logged in",
		"username", player.Username,
		"role", player.Role.String(),
	)

	return &LoginResult{
		Token:    token,
		Identity: Identity{Username: player.Username, Role: player.Role},
		RoomID:   player.CurrentRoom,
	}, nil
}

// Register creates a new account with the lowest role. Validation runs
// in a fixed order so clients see stable messages: username length,
// password length, confirmation match, then uniqueness. Registration
// never creates a session; the player logs in afterwards.
func (s *Service) Register(ctx context.Context, username, password, confirm string) (*Player, error) {
	username = strings.TrimSpace(username)

	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != confirm {
		return nil, oops.In("auth").
			Code("VALIDATION").
			Errorf("passwords do not match")
	}

	player := &Player{
		Username:    username,
		Role:        access.RolePlayer,
		CurrentRoom: s.spawn,
		Inventory:   []string{},
		Active:      true,
	}

	if err := s.players.Create(ctx, player, password); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, oops.In("auth").
				Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Errorf("username already taken")
		}
		return nil, oops.With("operation", "create player").Wrap(err)
	}

	slog.Info("player registered", "username", username)

	return player, nil
}

// Logout invalidates the session behind a token. Idempotent.
func (s *Service) Logout(ctx context.Context, token string) {
	s.registry.Invalidate(ctx, token)
}

// authorizeManage runs the account management guards in order: no
// self-management under any role, then the actor's permission, then
// target existence, then the Superuser-only management rule. It returns
// the target player so callers can log the state they changed.
func (s *Service) authorizeManage(ctx context.Context, actor Identity, target string, perm access.Permission) (*Player, error) {
	if actor.Username == target {
		return nil, oops.In("auth").
			Code("FORBIDDEN").
			With("username", actor.Username).
			Errorf("accounts cannot manage themselves")
	}
	if !access.HasPermission(actor.Role, perm) {
		return nil, oops.In("auth").
			Code("FORBIDDEN").
			With("role", actor.Role.String()).
			With("permission", string(perm)).
			Errorf("role lacks account management permission")
	}

	player, err := s.players.GetByUsername(ctx, target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.In("auth").
				Code("NOT_FOUND").
				With("username", target).
				Errorf("player %q not found", target)
		}
		return nil, oops.With("operation", "get player by username").Wrap(err)
	}

	if !access.CanManage(actor.Role, player.Role) {
		return nil, oops.In("auth").
			Code("FORBIDDEN").
			With("actor_role", actor.Role.String()).
			With("target_role", player.Role.String()).
			Errorf("role may not manage this account")
	}

	return player, nil
}

// SetRole changes another account's role. Live sessions keep the role
// they logged in with; the change applies at the target's next login.
func (s *Service) SetRole(ctx context.Context, actor Identity, target string, role access.Role) error {
	if !role.Valid() {
		return oops.In("auth").
			Code("VALIDATION").
			With("role", int(role)).
			Errorf("unknown role")
	}

	player, err := s.authorizeManage(ctx, actor, target, access.PermChangeRoles)
	if err != nil {
		return err
	}

	if err := s.players.SetRole(ctx, target, role); err != nil {
		return oops.With("operation", "set role").Wrap(err)
	}

	slog.Info("role changed",
		"actor", actor.Username,
		"target", target,
		"old_role", player.Role.String(),
		"new_role", role.String(),
	)
	return nil
}

// SetActive flips another account's active flag. Deactivation evicts
// the target's live session immediately; the account cannot log back
// in until reactivated.
func (s *Service) SetActive(ctx context.Context, actor Identity, target string, active bool) error {
	if _, err := s.authorizeManage(ctx, actor, target, access.PermManageUsers); err != nil {
		return err
	}

	if err := s.players.SetActive(ctx, target, active); err != nil {
		return oops.With("operation", "set active").Wrap(err)
	}

	evicted := false
	if !active {
		evicted = s.registry.EvictUser(ctx, target)
	}

	slog.Info("account active flag changed",
		"actor", actor.Username,
		"target", target,
		"active", active,
		"session_evicted", evicted,
	)
	return nil
}

// SetPassword replaces another account's password.
func (s *Service) SetPassword(ctx context.Context, actor Identity, target, password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	if _, err := s.authorizeManage(ctx, actor, target, access.PermManageUsers); err != nil {
		return err
	}

	if err := s.players.SetPassword(ctx, target, password); err != nil {
		return oops.With("operation", "set password").Wrap(err)
	}

	slog.Info("password reset",
		"actor", actor.Username,
		"target", target,
	)
	return nil
}
