// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultRecentLimit caps how many chat messages a recent-history
// query returns when the caller does not say otherwise.
const DefaultRecentLimit = 20

// ChatMessage is one line of persisted chat. Messages are immutable
// once written and always stamped with the room the sender occupied
// at the time. Whispers additionally carry a recipient; everything
// else is visible to the whole room.
type ChatMessage struct {
	ID        ulid.ULID
	RoomID    string
	Sender    string
	Recipient string // empty unless the message is a whisper
	Text      string
	CreatedAt time.Time
}

// Whispered reports whether the message was addressed to a single
// player rather than the room.
func (m ChatMessage) Whispered() bool {
	return m.Recipient != ""
}

// VisibleTo reports whether the viewer may read the message. Room
// messages are visible to everyone; whispers only to their sender and
// recipient.
func (m ChatMessage) VisibleTo(viewer string) bool {
	if !m.Whispered() {
		return true
	}
	return m.Sender == viewer || m.Recipient == viewer
}

// FormatChatTranscript renders recent messages the way the chat
// command shows them. The command handler and the HTTP chat endpoint
// share this format.
func FormatChatTranscript(msgs []ChatMessage) string {
	if len(msgs) == 0 {
		return "[No messages in this room yet]"
	}
	var b strings.Builder
	b.WriteString("[Recent messages]:\n")
	for _, msg := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", msg.Sender, msg.Text)
	}
	return b.String()
}

// ChatRepository persists and retrieves chat messages.
type ChatRepository interface {
	// Append persists a message. Messages are never updated or
	// deleted afterwards.
	Append(ctx context.Context, msg ChatMessage) error

	// Recent returns up to limit messages stored for the room, oldest
	// first, filtered to what the viewer may read. Messages stamped
	// with a different room are never returned.
	Recent(ctx context.Context, roomID, viewer string, limit int) ([]ChatMessage, error)
}
