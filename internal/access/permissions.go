// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package access

// Permission names a single gameplay or administrative capability.
type Permission string

const (
	PermPlayGame    Permission = "play_game"
	PermChat        Permission = "chat"
	PermEditWorld   Permission = "edit_world"
	PermCreateRooms Permission = "create_rooms"
	PermCreateItems Permission = "create_items"
	PermKickUsers   Permission = "kick_users"
	PermBanUsers    Permission = "ban_users"
	PermViewLogs    Permission = "view_logs"
	PermManageUsers Permission = "manage_users"
	PermChangeRoles Permission = "change_roles"
)

// Permission groups define reusable sets of permissions.
// Higher roles compose every lower group plus their own additions.

var playerPowers = []Permission{
	PermPlayGame,
	PermChat,
}

var builderPowers = []Permission{
	PermEditWorld,
	PermCreateRooms,
	PermCreateItems,
}

var adminPowers = []Permission{
	PermKickUsers,
	PermBanUsers,
	PermViewLogs,
}

var superuserPowers = []Permission{
	PermManageUsers,
	PermChangeRoles,
}

// rolePowers holds each role's permissions in definition order.
var rolePowers = map[Role][]Permission{
	RolePlayer:       playerPowers,
	RoleWorldBuilder: compose(playerPowers, builderPowers),
	RoleAdmin:        compose(playerPowers, builderPowers, adminPowers),
	RoleSuperuser:    compose(playerPowers, builderPowers, adminPowers, superuserPowers),
}

// roleSets mirrors rolePowers as lookup sets for O(1) checks.
var roleSets = func() map[Role]map[Permission]struct{} {
	sets := make(map[Role]map[Permission]struct{}, len(rolePowers))
	for role, perms := range rolePowers {
		set := make(map[Permission]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		sets[role] = set
	}
	return sets
}()

// compose merges multiple permission slices into one.
func compose(groups ...[]Permission) []Permission {
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	result := make([]Permission, 0, total)
	for _, g := range groups {
		result = append(result, g...)
	}
	return result
}

// HasPermission reports whether the role grants the permission.
// Unknown roles have no permissions (deny by default).
func HasPermission(role Role, perm Permission) bool {
	set, ok := roleSets[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// Permissions returns the role's permissions in definition order.
// The returned slice is a copy; callers may mutate it freely.
func Permissions(role Role) []Permission {
	perms, ok := rolePowers[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}
