// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package auth provides accounts and live sessions for DuskMUD.
//
// # Sessions
//
// The Registry is the single authority on who is logged in. It maps
// opaque tokens to identities entirely in memory; a restart logs
// everyone out. Each account holds at most one live session, enforced
// by evicting the previous session when a new login lands. The session
// mirror persisted through SessionMirrorRepository is an audit trail
// only and is never consulted to authenticate.
//
// # Accounts
//
// Player records live behind PlayerRepository. Password hashing is the
// repository's concern; hashes never cross the interface. The Service
// type coordinates login, registration, and the Superuser-only account
// management operations.
package auth
