// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package core

import (
	"log/slog"
	"sync"
)

// Broadcaster fans events out to in-process subscribers. It implements
// Notifier, so it can be handed straight to the engine as the push
// transport for room events.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string][]chan Event
}

// NewBroadcaster creates a new broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string][]chan Event),
	}
}

var _ Notifier = (*Broadcaster)(nil)

// Subscribe creates a channel for receiving events on a stream.
func (b *Broadcaster) Subscribe(stream string) chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 100)
	b.subs[stream] = append(b.subs[stream], ch)
	return ch
}

// Unsubscribe removes a channel from a stream.
func (b *Broadcaster) Unsubscribe(stream string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[stream]
	for i, sub := range subs {
		if sub == ch {
			b.subs[stream] = append(subs[:i], subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Notify implements Notifier by stamping the room stream onto the
// event and broadcasting it.
func (b *Broadcaster) Notify(roomID string, event Event) {
	event.Stream = RoomStream(roomID)
	b.Broadcast(event)
}

// Broadcast sends an event to all subscribers of its stream.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs[event.Stream] {
		select {
		case ch <- event:
		default:
			// Known limitation: the actor has already been told their
			// action succeeded before delivery is attempted. A
			// subscriber with a full buffer misses this event.
			slog.Warn("event dropped: subscriber buffer full",
				"stream", event.Stream,
				"event_id", event.ID.String(),
				"event_type", event.Type,
			)
		}
	}
}
