// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package world contains the static world model: rooms, items, and the
// exits connecting them.
//
// The world is loaded once at startup from a definition file and never
// mutated afterwards, so a *World is safe for concurrent reads without
// synchronization. Rooms form the complete room graph; a room's item
// list is a catalog of what can be picked up there, not a live
// container. Picking an item up never removes it from the catalog and
// dropping one never adds to it.
package world

import (
	"fmt"
	"strings"
)

// Room is a single location in the world graph.
type Room struct {
	ID          string
	Name        string
	Description string
	Exits       ExitList
	Items       []string // item ids available in this room's catalog
}

// Item is something a player can pick up and carry.
type Item struct {
	ID          string
	Name        string
	Description string
}

// Exit connects a room to a destination in a named direction.
type Exit struct {
	Direction string
	To        string
}

// ExitList preserves the definition order of a room's exits so that
// descriptions list them the way the world author wrote them.
type ExitList []Exit

// Lookup returns the destination room id for a direction.
func (e ExitList) Lookup(direction string) (string, bool) {
	for _, exit := range e {
		if exit.Direction == direction {
			return exit.To, true
		}
	}
	return "", false
}

// Directions returns the exit directions in definition order.
func (e ExitList) Directions() []string {
	out := make([]string, len(e))
	for i, exit := range e {
		out[i] = exit.Direction
	}
	return out
}

// World is the immutable room and item graph.
type World struct {
	rooms map[string]*Room
	items map[string]*Item
	order []string // room ids in definition order
	spawn string
}

// SpawnRoom returns the id of the room new and displaced players land in.
func (w *World) SpawnRoom() string {
	return w.spawn
}

// Room returns the room with the given id.
func (w *World) Room(id string) (*Room, bool) {
	r, ok := w.rooms[id]
	return r, ok
}

// Item returns the item with the given id.
func (w *World) Item(id string) (*Item, bool) {
	it, ok := w.items[id]
	return it, ok
}

// Rooms returns all room ids in definition order.
func (w *World) Rooms() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// CanMove reports whether the room has an exit in the given direction
// and returns the destination room id. A missing exit is a normal
// negative answer, not an error.
func (w *World) CanMove(roomID, direction string) (string, bool) {
	room, ok := w.rooms[roomID]
	if !ok {
		return "", false
	}
	return room.Exits.Lookup(strings.ToLower(direction))
}

// Adjacent returns the destinations reachable from the room, in exit
// definition order.
func (w *World) Adjacent(roomID string) []string {
	room, ok := w.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(room.Exits))
	for _, exit := range room.Exits {
		out = append(out, exit.To)
	}
	return out
}

// FindItemIn searches a list of item ids for an item whose display name
// matches, case-insensitively.
func (w *World) FindItemIn(ids []string, name string) (*Item, bool) {
	for _, id := range ids {
		item, ok := w.items[id]
		if !ok {
			continue
		}
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}
	return nil, false
}

// FindItem searches a room's catalog for an item by display name,
// case-insensitively.
func (w *World) FindItem(roomID, name string) (*Item, bool) {
	room, ok := w.rooms[roomID]
	if !ok {
		return nil, false
	}
	return w.FindItemIn(room.Items, name)
}

// ItemNames resolves item ids to display names, skipping unknown ids.
func (w *World) ItemNames(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if item, ok := w.items[id]; ok {
			out = append(out, item.Name)
		}
	}
	return out
}

// Describe composes the player-facing description of a room: name,
// description, the item catalog, other players present, and exits in
// definition order. The viewer is always excluded from the presence
// line; present should already be limited to players with a live
// session whose current room matches.
func (w *World) Describe(roomID, viewer string, present []string) string {
	room, ok := w.rooms[roomID]
	if !ok {
		return "You are nowhere. Something has gone wrong."
	}

	var b strings.Builder
	b.WriteString(room.Name)
	b.WriteString("\n")
	b.WriteString(room.Description)

	if names := w.ItemNames(room.Items); len(names) > 0 {
		b.WriteString("\nYou see: ")
		b.WriteString(strings.Join(names, ", "))
	}

	others := make([]string, 0, len(present))
	for _, name := range present {
		if name != viewer {
			others = append(others, name)
		}
	}
	if len(others) > 0 {
		b.WriteString("\nAlso here: ")
		b.WriteString(strings.Join(others, ", "))
	}

	if len(room.Exits) > 0 {
		b.WriteString("\nExits: ")
		b.WriteString(strings.Join(room.Exits.Directions(), ", "))
	} else {
		b.WriteString("\nExits: none")
	}

	return b.String()
}

// opposites maps each cardinal direction to where an arrival appears to
// come from.
var opposites = map[string]string{
	"north": "south",
	"south": "north",
	"east":  "west",
	"west":  "east",
}

// OppositeDirection returns the direction an observer in the
// destination room would see a mover arrive from. Directions without a
// defined opposite read as "somewhere".
func OppositeDirection(direction string) string {
	if opp, ok := opposites[strings.ToLower(direction)]; ok {
		return opp
	}
	return "somewhere"
}

// String implements fmt.Stringer for debug logging.
func (w *World) String() string {
	return fmt.Sprintf("world(%d rooms, %d items, spawn=%s)", len(w.rooms), len(w.items), w.spawn)
}
