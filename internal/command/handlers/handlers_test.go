// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/auth"
	"github.com/duskmud/duskmud/internal/command"
	"github.com/duskmud/duskmud/internal/core"
	"github.com/duskmud/duskmud/internal/world"
)

const handlersTestWorld = `
schema: "1.0"
rooms:
  - id: spawn
    name: The Landing
    description: Where everyone arrives.
    exits:
      north: hall
  - id: hall
    name: The Great Hall
    description: A long hall with a high ceiling.
    exits:
      south: spawn
    items: [lantern]
items:
  - id: lantern
    name: Lantern
    description: A dented brass lantern.
`

// fixedPresence marks a fixed set of usernames as online.
type fixedPresence map[string]bool

func (f fixedPresence) IsActive(username string) bool { return f[username] }

func (f fixedPresence) ActiveUsernames() []string {
	names := make([]string, 0, len(f))
	for name, active := range f {
		if active {
			names = append(names, name)
		}
	}
	return names
}

type harness struct {
	dispatcher *command.Dispatcher
	registry   *command.Registry
	repo       *auth.MemoryPlayerRepository
}

func newHarness(t *testing.T, presence fixedPresence) *harness {
	t.Helper()

	w, err := world.Load(strings.NewReader(handlersTestWorld))
	require.NoError(t, err)

	repo := auth.NewMemoryPlayerRepository()
	engine := core.NewEngine(w, repo, core.NewMemoryChatStore(), presence, nil)

	reg := command.NewRegistry()
	require.NoError(t, Register(reg, engine))

	dispatcher, err := command.NewDispatcher(reg)
	require.NoError(t, err)

	return &harness{dispatcher: dispatcher, registry: reg, repo: repo}
}

func (h *harness) addPlayer(t *testing.T, username, room string, items ...string) {
	t.Helper()
	p := &auth.Player{
		Username:    username,
		Role:        access.RolePlayer,
		CurrentRoom: room,
		Inventory:   items,
		Active:      true,
	}
	require.NoError(t, h.repo.Create(context.Background(), p, "password123"))
}

// run dispatches a line for a player-role actor and returns the result.
func (h *harness) run(t *testing.T, username, input string) core.Result {
	t.Helper()
	actor := core.Actor{Username: username, Role: access.RolePlayer}
	result, err := h.dispatcher.Dispatch(context.Background(), actor, input)
	require.NoError(t, err)
	return result
}

func TestRegister_CommandSet(t *testing.T) {
	h := newHarness(t, fixedPresence{})

	assert.Equal(t, 15, h.registry.Len())

	all := h.registry.All()
	require.NotEmpty(t, all)
	assert.Equal(t, "north", all[0].Name, "movement leads the help listing")
	assert.Equal(t, "help", all[len(all)-1].Name, "help closes the help listing")

	aliases := map[string]string{
		"n":    "north",
		"s":    "south",
		"e":    "east",
		"w":    "west",
		"l":    "look",
		"inv":  "inventory",
		"i":    "inventory",
		"take": "get",
		"'":    "say",
		"wh":   "whisper",
	}
	for alias, canonical := range aliases {
		entry, ok := h.registry.Get(alias)
		require.True(t, ok, "alias %q should resolve", alias)
		assert.Equal(t, canonical, entry.Name)
	}
}

func TestHelp_ListsEveryCommand(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true})
	h.addPlayer(t, "alice", "spawn")

	result := h.run(t, "alice", "help")
	require.True(t, result.Success)

	assert.True(t, strings.HasPrefix(result.Message, "[Available Commands]\n"))
	assert.Contains(t, result.Message, "  north/n - Move north\n")
	assert.Contains(t, result.Message, "  get/take <item> - Pick up an item\n")
	assert.Contains(t, result.Message, "  whisper <player> <message> - Whisper to a player in this room\n")
	assert.Contains(t, result.Message, "  help - Show this help message\n")

	for _, entry := range h.registry.All() {
		assert.Contains(t, result.Message, " "+entry.Usage+" - ", "usage for %q should be listed", entry.Name)
	}
}

func TestMissingArguments(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true})
	h.addPlayer(t, "alice", "spawn")

	tests := []struct {
		input string
		want  string
	}{
		{"get", "Get what?"},
		{"take   ", "Get what?"},
		{"drop", "Drop what?"},
		{"say", "Say what?"},
		{"yell", "Yell what?"},
		{"whisper", "Whisper to whom?"},
		{"whisper bob", "Whisper what?"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := h.run(t, "alice", tt.input)
			assert.False(t, result.Success)
			assert.Equal(t, tt.want, result.Message)
		})
	}
}

func TestMovement_AliasesMatchFullNames(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true})
	h.addPlayer(t, "alice", "spawn")

	result := h.run(t, "alice", "n")
	require.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Message, "You move north.\n"))
	assert.Contains(t, result.Message, "The Great Hall")

	result = h.run(t, "alice", "south")
	require.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Message, "You move south.\n"))

	result = h.run(t, "alice", "e")
	assert.False(t, result.Success)
	assert.Equal(t, "You cannot move east from here.", result.Message)
}

func TestSayThenChat(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true, "bob": true})
	h.addPlayer(t, "alice", "spawn")
	h.addPlayer(t, "bob", "spawn")

	result := h.run(t, "alice", "say Hello There")
	require.True(t, result.Success)
	assert.Equal(t, "You say: Hello There", result.Message)

	result = h.run(t, "bob", "chat")
	require.True(t, result.Success)
	assert.Equal(t, "[Recent messages]:\nalice: Hello There\n", result.Message)
}

func TestChat_EmptyRoom(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true})
	h.addPlayer(t, "alice", "spawn")

	result := h.run(t, "alice", "chat")
	require.True(t, result.Success)
	assert.Equal(t, "[No messages in this room yet]", result.Message)
}

func TestWhisper_VisibleOnlyToParticipants(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true, "bob": true, "carol": true})
	h.addPlayer(t, "alice", "spawn")
	h.addPlayer(t, "bob", "spawn")
	h.addPlayer(t, "carol", "spawn")

	result := h.run(t, "alice", "whisper bob meet me at the gate")
	require.True(t, result.Success)
	assert.Equal(t, "You whisper to bob: meet me at the gate", result.Message)

	bobView := h.run(t, "bob", "chat")
	assert.Contains(t, bobView.Message, "[WHISPER: alice → bob] meet me at the gate")

	carolView := h.run(t, "carol", "chat")
	assert.Equal(t, "[No messages in this room yet]", carolView.Message)
}

func TestGetDropInventoryFlow(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true})
	h.addPlayer(t, "alice", "hall")

	result := h.run(t, "alice", "inventory")
	assert.Equal(t, "Your inventory is empty.", result.Message)

	result = h.run(t, "alice", "get LANTERN")
	require.True(t, result.Success)
	assert.Equal(t, "You picked up the Lantern.", result.Message)

	result = h.run(t, "alice", "inv")
	require.True(t, result.Success)
	assert.Equal(t, "Your inventory:\n  - Lantern\n", result.Message)

	result = h.run(t, "alice", "drop lantern")
	require.True(t, result.Success)
	assert.Equal(t, "You dropped the Lantern.", result.Message)

	result = h.run(t, "alice", "i")
	assert.Equal(t, "Your inventory is empty.", result.Message)
}

func TestWho_ListsActivePlayers(t *testing.T) {
	h := newHarness(t, fixedPresence{"bob": true, "alice": true})
	h.addPlayer(t, "alice", "spawn")
	h.addPlayer(t, "bob", "spawn")

	result := h.run(t, "alice", "who")
	require.True(t, result.Success)
	assert.Equal(t, "Active players:\n  - alice\n  - bob", result.Message)
}

func TestLook_DescribesRoom(t *testing.T) {
	h := newHarness(t, fixedPresence{"alice": true, "bob": true})
	h.addPlayer(t, "alice", "hall")
	h.addPlayer(t, "bob", "hall")

	result := h.run(t, "alice", "l")
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "The Great Hall")
	assert.Contains(t, result.Message, "bob")
	assert.NotContains(t, result.Message, "alice", "the viewer is not listed among players here")
}
