// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when creating a player whose username
// already exists (case-insensitively).
var ErrUsernameTaken = errors.New("username already taken")
