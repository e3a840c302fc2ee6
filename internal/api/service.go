// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package api is the transport-agnostic boundary of the game server.
// Every operation that takes a token runs the full validate-then-act
// sequence itself; nothing here trusts transport middleware.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
	"github.com/duskmud/duskmud/internal/observability"
	"github.com/duskmud/duskmud/pkg/errutil"
)

// ErrNilDependency is returned when the service is constructed with a
// missing collaborator.
var ErrNilDependency = errors.New("api: all dependencies must be non-nil")

// Service composes the account service, session registry, engine, and
// dispatcher behind one surface that transports call.
type Service struct {
	accounts   *auth.Service
	registry   *auth.Registry
	engine     *core.Engine
	dispatcher *command.Dispatcher
}

// NewService creates the API facade.
func NewService(accounts *auth.Service, registry *auth.Registry, engine *core.Engine, dispatcher *command.Dispatcher) (*Service, error) {
	if accounts == nil || registry == nil || engine == nil || dispatcher == nil {
		return nil, ErrNilDependency
	}
	return &Service{
		accounts:   accounts,
		registry:   registry,
		engine:     engine,
		dispatcher: dispatcher,
	}, nil
}

// Login authenticates and returns the session token plus the welcome
// message: greeting, role, and the player's current room.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	res, err := s.accounts.Login(ctx, req.Username, req.Password)
	if err != nil {
		observability.RecordLogin(observability.LoginFailure)
		return nil, err
	}
	observability.RecordLogin(observability.LoginSuccess)
	observability.SetActiveSessions(s.registry.Count())

	actor := core.Actor{Username: res.Identity.Username, Role: res.Identity.Role}
	look, err := s.engine.Look(ctx, actor)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token: res.Token,
		Role:  res.Identity.Role.String(),
		Message: fmt.Sprintf("Welcome, %s!\nRole: %s\n\n%s",
			res.Identity.Username, res.Identity.Role.Display(), look.Message),
	}, nil
}

// Register creates an account. The player logs in separately; no
// session is created here.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*MessageResponse, error) {
	player, err := s.accounts.Register(ctx, req.Username, req.Password, req.Confirm)
	if err != nil {
		return nil, err
	}
	return &MessageResponse{
		Message: fmt.Sprintf("Account created successfully! You can now login as %s.", player.Username),
	}, nil
}

// Logout ends the session behind the token. The token must still be
// valid; an already dead session gets the same answer as a bad token.
func (s *Service) Logout(ctx context.Context, token string) (*MessageResponse, error) {
	identity, err := s.registry.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	s.accounts.Logout(ctx, token)
	observability.SetActiveSessions(s.registry.Count())
	return &MessageResponse{Message: fmt.Sprintf("Goodbye, %s!", identity.Username)}, nil
}

// Command validates the token and runs one command line. Infrastructure
// faults are logged here and surfaced as a generic failure so a storage
// blip never ends the player's session.
func (s *Service) Command(ctx context.Context, token, line string) (*CommandResponse, error) {
	identity, err := s.registry.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	actor := core.Actor{Username: identity.Username, Role: identity.Role}
	result, err := s.dispatcher.Dispatch(ctx, actor, line)
	if err != nil {
		errutil.LogError(slog.Default(), "command infrastructure failure", err)
		return &CommandResponse{Success: false, Message: command.PlayerMessage(err)}, nil
	}
	return &CommandResponse{Success: result.Success, Message: result.Message}, nil
}

// Status returns the player's structured status plus who is online.
func (s *Service) Status(ctx context.Context, token string) (*StatusResponse, error) {
	identity, err := s.registry.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	actor := core.Actor{Username: identity.Username, Role: identity.Role}
	info, err := s.engine.PlayerStatus(ctx, actor)
	if err != nil {
		return nil, err
	}

	active := s.registry.ActiveUsernames()
	sort.Strings(active)

	return &StatusResponse{
		Username:      info.Username,
		Role:          info.Role.String(),
		Room:          info.RoomID,
		RoomName:      info.RoomName,
		Inventory:     info.Inventory,
		ActivePlayers: active,
	}, nil
}

// Chat returns the rendered recent-message transcript for the player's
// current room, whispers filtered to what they may see.
func (s *Service) Chat(ctx context.Context, token string) (*ChatResponse, error) {
	identity, err := s.registry.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	actor := core.Actor{Username: identity.Username, Role: identity.Role}
	msgs, err := s.engine.RecentChat(ctx, actor, 0)
	if err != nil {
		return nil, err
	}
	return &ChatResponse{Chat: core.FormatChatTranscript(msgs)}, nil
}

// ActivePlayerCount reports how many sessions are live, for health
// reporting.
func (s *Service) ActivePlayerCount() int {
	return s.registry.Count()
}
