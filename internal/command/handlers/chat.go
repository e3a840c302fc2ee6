// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"
	"strings"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
	"github.com/duskmud/duskmud/internal/observability"
)

// sayEntry speaks to the current room.
func sayEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "say",
		Aliases:    []string{"'"},
		Usage:      "say <message>",
		Help:       "Send a message to the room",
		Permission: access.PermChat,
		Handler: func(ctx context.Context, actor core.Actor, args string) (core.Result, error) {
			if strings.TrimSpace(args) == "" {
				return core.Failf("Say what?"), nil
			}
			result, err := engine.Say(ctx, actor, args)
			if err == nil && result.Success {
				observability.RecordChatMessage("say")
			}
			return result, err
		},
	}
}

// yellEntry shouts to the current room and every adjoining one.
func yellEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "yell",
		Usage:      "yell <message>",
		Help:       "Shout to this room and adjoining rooms",
		Permission: access.PermChat,
		Handler: func(ctx context.Context, actor core.Actor, args string) (core.Result, error) {
			if strings.TrimSpace(args) == "" {
				return core.Failf("Yell what?"), nil
			}
			result, err := engine.Yell(ctx, actor, args)
			if err == nil && result.Success {
				observability.RecordChatMessage("yell")
			}
			return result, err
		},
	}
}

// whisperEntry sends a private message to one player in the same room.
func whisperEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "whisper",
		Aliases:    []string{"wh"},
		Usage:      "whisper <player> <message>",
		Help:       "Whisper to a player in this room",
		Permission: access.PermChat,
		Handler: func(ctx context.Context, actor core.Actor, args string) (core.Result, error) {
			args = strings.TrimSpace(args)
			if args == "" {
				return core.Failf("Whisper to whom?"), nil
			}
			target, text, _ := strings.Cut(args, " ")
			text = strings.TrimSpace(text)
			if text == "" {
				return core.Failf("Whisper what?"), nil
			}
			result, err := engine.Whisper(ctx, actor, target, text)
			if err == nil && result.Success {
				observability.RecordChatMessage("whisper")
			}
			return result, err
		},
	}
}

// chatEntry shows the recent messages for the current room.
func chatEntry(engine *core.Engine) command.Entry {
	return command.Entry{
		Name:       "chat",
		Usage:      "chat",
		Help:       "Show recent messages in this room",
		Permission: access.PermChat,
		Handler: func(ctx context.Context, actor core.Actor, _ string) (core.Result, error) {
			msgs, err := engine.RecentChat(ctx, actor, 0)
			if err != nil {
				return core.Result{}, err
			}
			return core.Result{Success: true, Message: core.FormatChatTranscript(msgs)}, nil
		},
	}
}
