// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/world"
)

// Actor is a validated identity performing a game operation. Callers
// obtain it from the session registry; the engine trusts it.
type Actor struct {
	Username string
	Role     access.Role
}

// PlayerStore is the slice of player persistence the engine needs.
// *auth.PlayerRepository satisfies it.
type PlayerStore interface {
	GetByUsername(ctx context.Context, username string) (*auth.Player, error)
	SetCurrentRoom(ctx context.Context, username, roomID string) error
	SetInventory(ctx context.Context, username string, items []string) error
	ListByCurrentRoom(ctx context.Context, roomID string) ([]string, error)
}

// Presence reports which players hold a live session right now.
// *auth.Registry satisfies it.
type Presence interface {
	IsActive(username string) bool
	ActiveUsernames() []string
}

// Engine orchestrates game operations against the static world and the
// player store. Every operation takes a validated Actor and returns a
// Result for normal game outcomes; the error return carries only
// storage and infrastructure faults.
type Engine struct {
	world       *world.World
	players     PlayerStore
	chat        ChatRepository
	presence    Presence
	notifier    Notifier
	recentLimit int
}

// EngineOption configures optional Engine behavior.
type EngineOption func(*Engine)

// WithRecentLimit sets how many chat messages history queries return
// when the caller does not ask for a specific count. If not provided,
// DefaultRecentLimit is used.
func WithRecentLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.recentLimit = n
		}
	}
}

// NewEngine creates a game engine. A nil notifier is replaced with
// NopNotifier so call sites never check.
func NewEngine(w *world.World, players PlayerStore, chat ChatRepository, presence Presence, notifier Notifier, opts ...EngineOption) *Engine {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	e := &Engine{
		world:       w,
		players:     players,
		chat:        chat,
		presence:    presence,
		notifier:    notifier,
		recentLimit: DefaultRecentLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// locate loads the actor's player record and resolves their current
// room. A stored room that no longer exists in the world sends the
// player back to spawn; the correction is persisted so it happens
// once.
func (e *Engine) locate(ctx context.Context, username string) (*auth.Player, string, error) {
	player, err := e.players.GetByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load player %q: %w", username, err)
	}

	roomID := player.CurrentRoom
	if _, ok := e.world.Room(roomID); !ok {
		spawn := e.world.SpawnRoom()
		slog.Warn("player located in unknown room, returning to spawn",
			"username", username,
			"room_id", roomID,
			"spawn", spawn,
		)
		if err := e.players.SetCurrentRoom(ctx, username, spawn); err != nil {
			return nil, "", fmt.Errorf("failed to respawn player %q: %w", username, err)
		}
		player.CurrentRoom = spawn
		roomID = spawn
	}
	return player, roomID, nil
}

// describe renders a room for a viewer, resolving which other players
// are visibly present (live session and matching room).
func (e *Engine) describe(ctx context.Context, roomID, viewer string) (string, error) {
	present, err := e.Present(ctx, roomID, viewer)
	if err != nil {
		return "", err
	}
	return e.world.Describe(roomID, viewer, present), nil
}

// Present returns the players visibly in a room: their stored current
// room matches and they hold a live session. exclude is left out of
// the result (pass "" to keep everyone).
func (e *Engine) Present(ctx context.Context, roomID, exclude string) ([]string, error) {
	occupants, err := e.players.ListByCurrentRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room occupants: %w", err)
	}

	present := make([]string, 0, len(occupants))
	for _, name := range occupants {
		if name == exclude || !e.presence.IsActive(name) {
			continue
		}
		present = append(present, name)
	}
	return present, nil
}

// Move walks the actor through an exit of their current room. A
// missing exit is a failure Result, never an error, and leaves the
// player where they were.
func (e *Engine) Move(ctx context.Context, actor Actor, direction string) (Result, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))

	_, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return Result{}, err
	}

	dest, ok := e.world.CanMove(roomID, direction)
	if !ok {
		return Failf("You cannot move %s from here.", direction), nil
	}

	if err := e.players.SetCurrentRoom(ctx, actor.Username, dest); err != nil {
		return Result{}, fmt.Errorf("failed to move player %q: %w", actor.Username, err)
	}

	now := time.Now()
	e.notifier.Notify(roomID, Event{
		ID:        NewULID(),
		Type:      EventTypeLeave,
		Timestamp: now,
		Actor:     actor.Username,
		Text:      fmt.Sprintf("%s leaves %s.", actor.Username, direction),
	})
	e.notifier.Notify(dest, Event{
		ID:        NewULID(),
		Type:      EventTypeArrive,
		Timestamp: now,
		Actor:     actor.Username,
		Text:      fmt.Sprintf("%s arrives from %s.", actor.Username, world.OppositeDirection(direction)),
	})

	desc, err := e.describe(ctx, dest, actor.Username)
	if err != nil {
		return Result{}, err
	}
	return Okf("You move %s.\n%s", direction, desc), nil
}

// Look renders the actor's current room.
func (e *Engine) Look(ctx context.Context, actor Actor) (Result, error) {
	_, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return Result{}, err
	}
	desc, err := e.describe(ctx, roomID, actor.Username)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Message: desc}, nil
}

// PickUp adds an item from the current room's catalog to the actor's
// inventory, matched case-insensitively by display name. The catalog
// is never depleted, so any number of players can pick up the same
// item; already holding it is a no-op success.
func (e *Engine) PickUp(ctx context.Context, actor Actor, itemName string) (Result, error) {
	itemName = strings.TrimSpace(itemName)

	player, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return Result{}, err
	}

	room, _ := e.world.Room(roomID)
	item, ok := e.world.FindItemIn(room.Items, itemName)
	if !ok {
		return Failf("There is no '%s' here.", itemName), nil
	}

	if !slices.Contains(player.Inventory, item.ID) {
		inventory := append(slices.Clone(player.Inventory), item.ID)
		if err := e.players.SetInventory(ctx, actor.Username, inventory); err != nil {
			return Result{}, fmt.Errorf("failed to update inventory for %q: %w", actor.Username, err)
		}
	}
	return Okf("You picked up the %s.", item.Name), nil
}

// Drop removes an item from the actor's inventory, matched
// case-insensitively by display name. The room catalog is not
// restocked; the asymmetry with PickUp is intended.
func (e *Engine) Drop(ctx context.Context, actor Actor, itemName string) (Result, error) {
	itemName = strings.TrimSpace(itemName)

	player, err := e.players.GetByUsername(ctx, actor.Username)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load player %q: %w", actor.Username, err)
	}

	item, ok := e.world.FindItemIn(player.Inventory, itemName)
	if !ok {
		return Failf("You don't have a '%s'.", itemName), nil
	}

	inventory := slices.Clone(player.Inventory)
	if i := slices.Index(inventory, item.ID); i >= 0 {
		inventory = slices.Delete(inventory, i, i+1)
	}
	if err := e.players.SetInventory(ctx, actor.Username, inventory); err != nil {
		return Result{}, fmt.Errorf("failed to update inventory for %q: %w", actor.Username, err)
	}
	return Okf("You dropped the %s.", item.Name), nil
}

// Inventory lists what the actor is carrying.
func (e *Engine) Inventory(ctx context.Context, actor Actor) (Result, error) {
	player, err := e.players.GetByUsername(ctx, actor.Username)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load player %q: %w", actor.Username, err)
	}

	names := e.world.ItemNames(player.Inventory)
	if len(names) == 0 {
		return Okf("Your inventory is empty."), nil
	}

	var b strings.Builder
	b.WriteString("Your inventory:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  - %s\n", name)
	}
	return Result{Success: true, Message: b.String()}, nil
}

// Say persists a chat message stamped with the actor's current room.
// Messages never leak across rooms.
func (e *Engine) Say(ctx context.Context, actor Actor, text string) (Result, error) {
	text = strings.TrimSpace(text)

	_, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return Result{}, err
	}

	msg := ChatMessage{
		ID:        NewULID(),
		RoomID:    roomID,
		Sender:    actor.Username,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := e.chat.Append(ctx, msg); err != nil {
		return Result{}, fmt.Errorf("failed to append chat message: %w", err)
	}

	e.notifier.Notify(roomID, Event{
		ID:        msg.ID,
		Type:      EventTypeSay,
		Timestamp: msg.CreatedAt,
		Actor:     actor.Username,
		Text:      fmt.Sprintf("%s says: %s", actor.Username, text),
	})
	return Okf("You say: %s", text), nil
}

// Yell stores a message in the actor's current room and every room an
// exit leads to, each prefixed so readers know it carried.
func (e *Engine) Yell(ctx context.Context, actor Actor, text string) (Result, error) {
	text = strings.TrimSpace(text)

	_, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return Result{}, err
	}

	stored := "[YELL] " + text
	rooms := append([]string{roomID}, e.world.Adjacent(roomID)...)
	now := time.Now()
	for _, id := range rooms {
		msg := ChatMessage{
			ID:        NewULID(),
			RoomID:    id,
			Sender:    actor.Username,
			Text:      stored,
			CreatedAt: now,
		}
		if err := e.chat.Append(ctx, msg); err != nil {
			return Result{}, fmt.Errorf("failed to append yell to room %q: %w", id, err)
		}
		e.notifier.Notify(id, Event{
			ID:        msg.ID,
			Type:      EventTypeYell,
			Timestamp: now,
			Actor:     actor.Username,
			Text:      fmt.Sprintf("[YELL] %s: %s", actor.Username, text),
		})
	}
	return Okf("You yell: %s", text), nil
}

// Whisper sends a private message to another player in the same room.
// The target must exist, be online, and share the actor's room; each
// failure has its own message so the sender knows what to fix.
func (e *Engine) Whisper(ctx context.Context, actor Actor, target, text string) (Result, error) {
	target = strings.TrimSpace(target)
	text = strings.TrimSpace(text)

	_, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return Result{}, err
	}

	targetPlayer, err := e.players.GetByUsername(ctx, target)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return Failf("Player '%s' does not exist.", target), nil
		}
		return Result{}, fmt.Errorf("failed to load whisper target %q: %w", target, err)
	}

	if !e.presence.IsActive(target) {
		return Failf("Player '%s' is not online.", target), nil
	}
	if targetPlayer.CurrentRoom != roomID {
		return Failf("Player '%s' is not in this room.", target), nil
	}

	msg := ChatMessage{
		ID:        NewULID(),
		RoomID:    roomID,
		Sender:    actor.Username,
		Recipient: target,
		Text:      fmt.Sprintf("[WHISPER: %s → %s] %s", actor.Username, target, text),
		CreatedAt: time.Now(),
	}
	if err := e.chat.Append(ctx, msg); err != nil {
		return Result{}, fmt.Errorf("failed to append whisper: %w", err)
	}
	return Okf("You whisper to %s: %s", target, text), nil
}

// RecentChat returns the most recent messages for the actor's current
// room, oldest first. Whispers appear only for their sender and
// recipient. limit <= 0 means the engine's configured default.
func (e *Engine) RecentChat(ctx context.Context, actor Actor, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = e.recentLimit
	}

	_, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return nil, err
	}

	msgs, err := e.chat.Recent(ctx, roomID, actor.Username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent chat: %w", err)
	}
	return msgs, nil
}

// StatusInfo is a structured snapshot of a player's state, shared by
// the status command and the HTTP status endpoint.
type StatusInfo struct {
	Username  string
	Role      access.Role
	RoomID    string
	RoomName  string
	Inventory []string // display names
}

// PlayerStatus reports the actor's role, location, and inventory.
// Read-only apart from the spawn fallback.
func (e *Engine) PlayerStatus(ctx context.Context, actor Actor) (StatusInfo, error) {
	player, roomID, err := e.locate(ctx, actor.Username)
	if err != nil {
		return StatusInfo{}, err
	}

	room, _ := e.world.Room(roomID)
	return StatusInfo{
		Username:  actor.Username,
		Role:      actor.Role,
		RoomID:    roomID,
		RoomName:  room.Name,
		Inventory: e.world.ItemNames(player.Inventory),
	}, nil
}

// Status renders PlayerStatus as the status command's message.
func (e *Engine) Status(ctx context.Context, actor Actor) (Result, error) {
	info, err := e.PlayerStatus(ctx, actor)
	if err != nil {
		return Result{}, err
	}

	inventory := "empty"
	if len(info.Inventory) > 0 {
		inventory = strings.Join(info.Inventory, ", ")
	}
	return Okf("Username: %s\nRole: %s\nRoom: %s (%s)\nInventory: %s",
		info.Username, info.Role.Display(), info.RoomName, info.RoomID, inventory), nil
}

// Who lists every player with a live session, sorted.
func (e *Engine) Who(_ context.Context) (Result, error) {
	names := e.presence.ActiveUsernames()
	if len(names) == 0 {
		return Okf("No other players online."), nil
	}

	slices.Sort(names)
	var b strings.Builder
	b.WriteString("Active players:")
	for _, name := range names {
		b.WriteString("\n  - ")
		b.WriteString(name)
	}
	return Result{Success: true, Message: b.String()}, nil
}

// World exposes the engine's world for read-only callers.
func (e *Engine) World() *world.World {
	return e.world
}
