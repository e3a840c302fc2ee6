// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package world

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// schemaConstraint is the range of world file schema versions this
// build understands.
var schemaConstraint = mustConstraint("^1.0")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic("invalid schema constraint: " + err.Error())
	}
	return c
}

// worldFile is the on-disk shape of a world definition.
type worldFile struct {
	Schema string    `yaml:"schema"`
	Spawn  string    `yaml:"spawn,omitempty"`
	Rooms  []roomDef `yaml:"rooms"`
	Items  []itemDef `yaml:"items"`
}

type roomDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Exits       ExitList `yaml:"exits,omitempty"`
	Items       []string `yaml:"items,omitempty"`
}

type itemDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// UnmarshalYAML decodes exits from a YAML mapping while preserving the
// order the directions were written in. A plain map would lose it.
func (e *ExitList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("exits must be a mapping of direction to room id")
	}
	out := make(ExitList, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var direction, to string
		if err := value.Content[i].Decode(&direction); err != nil {
			return fmt.Errorf("invalid exit direction: %w", err)
		}
		if err := value.Content[i+1].Decode(&to); err != nil {
			return fmt.Errorf("invalid exit destination for %q: %w", direction, err)
		}
		out = append(out, Exit{Direction: strings.ToLower(direction), To: to})
	}
	*e = out
	return nil
}

// MarshalYAML renders exits back into a mapping, definition order kept.
func (e ExitList) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, exit := range e {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: exit.Direction},
			&yaml.Node{Kind: yaml.ScalarNode, Value: exit.To},
		)
	}
	return node, nil
}

// DefaultSpawnRoom is used when the world file does not name one.
const DefaultSpawnRoom = "spawn"

//go:embed default.yaml
var defaultWorld embed.FS

// LoadDefault loads the world definition embedded in the binary.
// It exists so the server can start without any external data files.
func LoadDefault() (*World, error) {
	data, err := defaultWorld.ReadFile("default.yaml")
	if err != nil {
		return nil, oops.In("world").Code("WORLD_INVALID").Wrap(err)
	}
	return Load(strings.NewReader(string(data)))
}

// LoadFile loads and validates a world definition from a YAML file.
func LoadFile(path string) (*World, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, oops.In("world").
			Code("WORLD_INVALID").
			With("path", path).
			Wrapf(err, "open world file")
	}
	defer f.Close() //nolint:errcheck // read-only file
	w, err := Load(f)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return w, nil
}

// Load parses a world definition and validates its referential
// integrity. Every exit must lead to a defined room and every room
// catalog entry must name a defined item; a violation here is fatal so
// that broken worlds are caught at startup, never mid-game.
func Load(r io.Reader) (*World, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, oops.In("world").Code("WORLD_INVALID").Wrapf(err, "read world file")
	}

	var f worldFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, oops.In("world").Code("WORLD_INVALID").Wrapf(err, "parse world file")
	}

	if err := checkSchema(f.Schema); err != nil {
		return nil, err
	}

	items := make(map[string]*Item, len(f.Items))
	for _, def := range f.Items {
		if def.ID == "" {
			return nil, invalid("item with empty id", "item_name", def.Name)
		}
		if _, dup := items[def.ID]; dup {
			return nil, invalid("duplicate item id", "item_id", def.ID)
		}
		if def.Name == "" {
			return nil, invalid("item with empty name", "item_id", def.ID)
		}
		items[def.ID] = &Item{ID: def.ID, Name: def.Name, Description: def.Description}
	}

	rooms := make(map[string]*Room, len(f.Rooms))
	order := make([]string, 0, len(f.Rooms))
	for _, def := range f.Rooms {
		if def.ID == "" {
			return nil, invalid("room with empty id", "room_name", def.Name)
		}
		if _, dup := rooms[def.ID]; dup {
			return nil, invalid("duplicate room id", "room_id", def.ID)
		}
		rooms[def.ID] = &Room{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Exits:       def.Exits,
			Items:       def.Items,
		}
		order = append(order, def.ID)
	}
	if len(rooms) == 0 {
		return nil, invalid("world defines no rooms")
	}

	// Referential integrity: dangling references are load-time errors.
	for _, id := range order {
		room := rooms[id]
		for _, exit := range room.Exits {
			if exit.Direction == "" {
				return nil, invalid("exit with empty direction", "room_id", id)
			}
			if _, ok := rooms[exit.To]; !ok {
				return nil, invalid("exit leads to undefined room",
					"room_id", id, "direction", exit.Direction, "target", exit.To)
			}
		}
		for _, itemID := range room.Items {
			if _, ok := items[itemID]; !ok {
				return nil, invalid("room catalog names undefined item",
					"room_id", id, "item_id", itemID)
			}
		}
	}

	spawn := f.Spawn
	if spawn == "" {
		spawn = DefaultSpawnRoom
	}
	if _, ok := rooms[spawn]; !ok {
		return nil, invalid("spawn room is not defined", "spawn", spawn)
	}

	return &World{rooms: rooms, items: items, order: order, spawn: spawn}, nil
}

// checkSchema verifies the declared schema version is one this build
// can read.
func checkSchema(raw string) error {
	if raw == "" {
		return invalid("world file missing schema version")
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return oops.In("world").
			Code("WORLD_INVALID").
			With("schema", raw).
			Wrapf(err, "parse schema version")
	}
	if !schemaConstraint.Check(v) {
		return invalid("unsupported world schema version",
			"schema", raw, "supported", "1.x")
	}
	return nil
}

func invalid(msg string, kv ...any) error {
	b := oops.In("world").Code("WORLD_INVALID")
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		b = b.With(key, kv[i+1])
	}
	return b.Errorf("%s", msg)
}
