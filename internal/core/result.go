// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package core

import "fmt"

// Result is the outcome of a game operation. Success reports whether
// the action took effect; Message is always safe to show the player.
// A failed Result is a normal game outcome (a wall, a missing item),
// not an error: infrastructure faults travel on the error return of
// the operation that produced the Result.
type Result struct {
	Success bool
	Message string
}

// Okf formats a successful result.
func Okf(format string, args ...any) Result {
	return Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

// Failf formats a failed result.
func Failf(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
