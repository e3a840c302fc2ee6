// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package access provides role-based authorization for DuskMUD.
//
// The role set is closed and totally ordered:
//
//	Player < WorldBuilder < Admin < Superuser
//
// Permissions are resolved through a table precomputed at package init;
// every check is a pure lookup with no I/O and no pattern matching.
package access

import (
	"fmt"
	"strings"
)

// Role is a player's authorization level.
// The zero value is RolePlayer, the least privileged role.
type Role int

const (
	RolePlayer Role = iota
	RoleWorldBuilder
	RoleAdmin
	RoleSuperuser
)

// roleNames maps roles to their canonical storage strings.
var roleNames = map[Role]string{
	RolePlayer:       "player",
	RoleWorldBuilder: "worldbuilder",
	RoleAdmin:        "admin",
	RoleSuperuser:    "superuser",
}

// String returns the canonical lowercase name of the role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// Display returns the capitalized role name used in player-facing
// text. Storage and logs use String.
func (r Role) Display() string {
	name := r.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// AtLeast reports whether r sits at or above other in the role order.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// ParseRole converts a storage string into a Role.
// Unknown strings are an error, never silently mapped to a default.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if name == s {
			return role, nil
		}
	}
	return RolePlayer, fmt.Errorf("unknown role %q", s)
}

// Roles returns all roles in ascending privilege order.
func Roles() []Role {
	return []Role{RolePlayer, RoleWorldBuilder, RoleAdmin, RoleSuperuser}
}

// CanManage reports whether an actor may manage another account (change
// its role, password, or active flag). Only Superusers manage accounts;
// the target's role never widens the rule, so a Superuser may manage
// another Superuser. Self-management is rejected a level up by the
// account service, which knows both usernames.
func CanManage(actor, target Role) bool {
	return actor == RoleSuperuser
}
