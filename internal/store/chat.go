// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/duskmud/duskmud/internal/core"
)

// PostgresChatStore implements core.ChatRepository using PostgreSQL.
// Message IDs are ULIDs, so ORDER BY id is creation order.
type PostgresChatStore struct {
	pool poolIface
}

// NewPostgresChatStore creates a chat store on the pool.
func NewPostgresChatStore(pool poolIface) *PostgresChatStore {
	return &PostgresChatStore{pool: pool}
}

var _ core.ChatRepository = (*PostgresChatStore)(nil)

// Append persists a message. Rows are never updated or deleted.
func (s *PostgresChatStore) Append(ctx context.Context, msg core.ChatMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_messages (id, room_id, sender, recipient, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		msg.ID.String(),
		msg.RoomID,
		msg.Sender,
		msg.Recipient,
		msg.Text,
		msg.CreatedAt,
	)
	if err != nil {
		return oops.Code("CHAT_APPEND_FAILED").
			With("operation", "insert message").
			With("id", msg.ID.String()).
			With("room_id", msg.RoomID).
			Wrap(err)
	}
	return nil
}

// Recent returns up to limit messages for the room visible to the
// viewer, oldest first. The visibility rule lives in the query:
// whispers only surface for their sender or recipient.
func (s *PostgresChatStore) Recent(ctx context.Context, roomID, viewer string, limit int) ([]core.ChatMessage, error) {
	if limit <= 0 {
		limit = core.DefaultRecentLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, room_id, sender, recipient, body, created_at
		FROM chat_messages
		WHERE room_id = $1
		  AND (recipient = '' OR sender = $2 OR recipient = $2)
		ORDER BY id DESC
		LIMIT $3
	`, roomID, viewer, limit)
	if err != nil {
		return nil, oops.Code("CHAT_QUERY_FAILED").
			With("operation", "query recent messages").
			With("room_id", roomID).
			Wrap(err)
	}
	defer rows.Close()

	var msgs []core.ChatMessage
	for rows.Next() {
		msg, err := scanChatMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("CHAT_QUERY_FAILED").
			With("operation", "iterate messages").
			With("room_id", roomID).
			Wrap(err)
	}

	// The query walks newest-first to honor the limit; flip to the
	// oldest-first order callers render.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func scanChatMessage(row pgx.Row) (core.ChatMessage, error) {
	var (
		msg   core.ChatMessage
		idStr string
	)
	err := row.Scan(&idStr, &msg.RoomID, &msg.Sender, &msg.Recipient, &msg.Text, &msg.CreatedAt)
	if err != nil {
		return core.ChatMessage{}, oops.Code("CHAT_SCAN_FAILED").
			With("operation", "scan message").
			Wrap(err)
	}

	msg.ID, err = ulid.Parse(idStr)
	if err != nil {
		return core.ChatMessage{}, oops.Code("CHAT_CORRUPT_ID").
			With("id", idStr).
			Wrap(err)
	}
	return msg, nil
}
