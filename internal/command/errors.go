// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package command

import (
	"github.com/samber/oops"
)

// Error codes carried on oops errors across the whole request path.
// The dispatcher and API facade use them to decide what a player may
// see; everything unrecognized collapses to a generic failure.
const (
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeForbidden          = "FORBIDDEN"
	CodeValidation         = "VALIDATION"
	CodeNotFound           = "NOT_FOUND"
	CodeStorage            = "STORAGE"
	CodeWorldInvalid       = "WORLD_INVALID"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeAccountDisabled    = "AUTH_ACCOUNT_DISABLED"
	CodeUsernameTaken      = "AUTH_USERNAME_TAKEN"
)

// genericFailure is shown whenever an error has no player-safe
// translation. Internals never leak to players.
const genericFailure = "Something went wrong. Try again."

// PlayerMessage extracts a player-facing message from an error.
// Validation errors carry human-readable reasons and pass through;
// everything else maps by code so storage details stay internal.
func PlayerMessage(err error) string {
	if err == nil {
		return genericFailure
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return genericFailure
	}

	switch oopsErr.Code() {
	case CodeUnauthenticated:
		return "Invalid session. Please login first."
	case CodeForbidden:
		return "You don't have permission to do that."
	case CodeValidation:
		return oopsErr.Error()
	case CodeNotFound:
		return "No such player."
	case CodeInvalidCredentials:
		return "Invalid username or password."
	case CodeAccountDisabled:
		return "This account has been deactivated. Please contact an administrator."
	case CodeUsernameTaken:
		return "Username already taken"
	default:
		return genericFailure
	}
}
