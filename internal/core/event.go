// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package core contains the game engine and its supporting types.
package core

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType identifies the kind of event.
type EventType string

const (
	EventTypeSay    EventType = "say"
	EventTypeYell   EventType = "yell"
	EventTypeArrive EventType = "arrive"
	EventTypeLeave  EventType = "leave"
	EventTypeSystem EventType = "system"
)

// Event is something that happened in the game world and should be
// pushed to connected clients.
type Event struct {
	ID        ulid.ULID
	Stream    string // e.g. "room:spawn"
	Type      EventType
	Timestamp time.Time
	Actor     string // username that caused the event, or "system"
	Text      string // player-visible line
}

// RoomStream returns the stream name for a room's events.
func RoomStream(roomID string) string {
	return "room:" + roomID
}

// Notifier is the push hook the engine calls whenever something worth
// telling room occupants about happens (arrivals, departures, speech).
// The engine does not depend on delivery succeeding; implementations
// are free to drop events.
type Notifier interface {
	Notify(roomID string, event Event)
}

// NopNotifier discards every event. It stands in wherever no push
// transport is wired so engine call sites never go nil-checking.
type NopNotifier struct{}

// Notify implements Notifier by doing nothing.
func (NopNotifier) Notify(string, Event) {}
