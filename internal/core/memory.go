// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package core

import (
	"context"
	"sync"
)

// MemoryChatStore is an in-memory ChatRepository for testing.
type MemoryChatStore struct {
	mu   sync.RWMutex
	msgs []ChatMessage
}

// NewMemoryChatStore creates a new in-memory chat store.
func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{}
}

var _ ChatRepository = (*MemoryChatStore)(nil)

// Append persists a message to the in-memory store.
func (s *MemoryChatStore) Append(_ context.Context, msg ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
	return nil
}

// Recent returns up to limit messages for the room visible to the
// viewer, oldest first.
func (s *MemoryChatStore) Recent(_ context.Context, roomID, viewer string, limit int) ([]ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	visible := make([]ChatMessage, 0, limit)
	for _, msg := range s.msgs {
		if msg.RoomID != roomID || !msg.VisibleTo(viewer) {
			continue
		}
		visible = append(visible, msg)
	}
	if len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}
	return visible, nil
}

// Len returns the total number of stored messages across all rooms.
func (s *MemoryChatStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.msgs)
}
