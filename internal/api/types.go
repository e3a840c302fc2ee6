// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package api

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login. Message is the
// welcome text the client shows verbatim.
type LoginResponse struct {
	Token   string `json:"session_id"`
	Role    string `json:"role"`
	Message string `json:"message"`
}

// RegisterRequest carries a new account's credentials.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"password_confirm"`
}

// MessageResponse is the generic acknowledgement shape.
type MessageResponse struct {
	Message string `json:"message"`
}

// CommandResponse mirrors an engine Result on the wire. Success false
// with a message is a normal game outcome, not a transport error.
type CommandResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatusResponse is the structured player status.
type StatusResponse struct {
	Username      string   `json:"username"`
	Role          string   `json:"role"`
	Room          string   `json:"current_room"`
	RoomName      string   `json:"room_name"`
	Inventory     []string `json:"inventory"`
	ActivePlayers []string `json:"active_players"`
}

// ChatResponse carries the rendered transcript of the player's room.
type ChatResponse struct {
	Chat string `json:"chat"`
}

// SetRoleRequest changes another account's role.
type SetRoleRequest struct {
	Token  string `json:"session_id"`
	Target string `json:"username"`
	Role   string `json:"role"`
}

// SetActiveRequest flips another account's active flag.
type SetActiveRequest struct {
	Token  string `json:"session_id"`
	Target string `json:"username"`
	Active bool   `json:"active"`
}

// SetPasswordRequest replaces another account's password.
type SetPasswordRequest struct {
	Token    string `json:"session_id"`
	Target   string `json:"username"`
	Password string `json:"new_password"`
}
