// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package api

import (
	"context"
	"fmt"

	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/access"
)

// SetRole changes another account's role. The account service owns the
// management guards; this layer only authenticates and parses.
func (s *Service) SetRole(ctx context.Context, req SetRoleRequest) (*MessageResponse, error) {
	identity, err := s.registry.Validate(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	role, err := access.ParseRole(req.Role)
	if err != nil {
		return nil, oops.In("api").
			Code("VALIDATION").
			With("role", req.Role).
			Errorf("unknown role %q", req.Role)
	}

	if err := s.accounts.SetRole(ctx, identity, req.Target, role); err != nil {
		return nil, err
	}
	return &MessageResponse{
		Message: fmt.Sprintf("Role for %s set to %s.", req.Target, role.String()),
	}, nil
}

// SetActive flips another account's active flag. Deactivation kicks the
// target's live session immediately.
func (s *Service) SetActive(ctx context.Context, req SetActiveRequest) (*MessageResponse, error) {
	identity, err := s.registry.Validate(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SetActive(ctx, identity, req.Target, req.Active); err != nil {
		return nil, err
	}

	verb := "deactivated"
	if req.Active {
		verb = "activated"
	}
	return &MessageResponse{Message: fmt.Sprintf("Account %s %s.", req.Target, verb)}, nil
}

// SetPassword replaces another account's password.
func (s *Service) SetPassword(ctx context.Context, req SetPasswordRequest) (*MessageResponse, error) {
	identity, err := s.registry.Validate(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.SetPassword(ctx, identity, req.Target, req.Password); err != nil {
		return nil, err
	}
	return &MessageResponse{Message: fmt.Sprintf("Password for %s updated.", req.Target)}, nil
}
