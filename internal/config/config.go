// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

// Package config loads server configuration by layering, lowest to
// highest precedence: built-in defaults, an optional YAML file, and
// command-line flags. The database URL may additionally come from the
// DATABASE_URL environment variable, which the command layer reads.
package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/duskmud/duskmud/internal/xdg"
)

// Defaults for every tunable. RecentLimit mirrors
// core.DefaultRecentLimit; keep them in sync.
const (
	DefaultHTTPAddr    = ":8000"
	DefaultMetricsAddr = "127.0.0.1:9100"
	DefaultRecentLimit = 20
	DefaultLogFormat   = "json"
	DefaultLogLevel    = "info"
)

// Config is the full server configuration tree. Field groups match the
// YAML file layout one to one.
type Config struct {
	Listen   Listen   `koanf:"listen"`
	Database Database `koanf:"database"`
	World    World    `koanf:"world"`
	Chat     Chat     `koanf:"chat"`
	Log      Log      `koanf:"log"`
}

// Listen holds the network addresses the server binds.
type Listen struct {
	// HTTP is the address of the game API.
	HTTP string `koanf:"http"`
	// Metrics is the address of the metrics and health server.
	// Empty disables it.
	Metrics string `koanf:"metrics"`
}

// Database holds persistence settings.
type Database struct {
	// URL is the PostgreSQL connection string. When empty the command
	// layer falls back to the DATABASE_URL environment variable.
	URL string `koanf:"url"`
}

// World holds world-definition settings.
type World struct {
	// Path is the YAML world file. Empty loads the world embedded in
	// the binary.
	Path string `koanf:"path"`
	// SpawnRoom is where new accounts start. Empty follows the world
	// file's declared spawn room.
	SpawnRoom string `koanf:"spawn_room"`
}

// Chat holds chat settings.
type Chat struct {
	// RecentLimit is how many messages history queries return.
	RecentLimit int `koanf:"recent_limit"`
}

// Log holds logging settings.
type Log struct {
	Format string `koanf:"format"` // json or text
	Level  string `koanf:"level"`  // debug, info, warn, error
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Listen: Listen{
			HTTP:    DefaultHTTPAddr,
			Metrics: DefaultMetricsAddr,
		},
		Chat: Chat{
			RecentLimit: DefaultRecentLimit,
		},
		Log: Log{
			Format: DefaultLogFormat,
			Level:  DefaultLogLevel,
		},
	}
}

// DefaultPath returns the conventional config file location,
// $XDG_CONFIG_HOME/duskmud/duskmud.yaml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigDir(), "duskmud.yaml")
}

// flagKeys maps flag names to config keys. Flags absent from this
// table never reach the config, so commands can register their own
// switches on the same flag set.
var flagKeys = map[string]string{
	"http-addr":    "listen.http",
	"metrics-addr": "listen.metrics",
	"database-url": "database.url",
	"world-path":   "world.path",
	"spawn-room":   "world.spawn_room",
	"recent-limit": "chat.recent_limit",
	"log-format":   "log.format",
	"log-level":    "log.level",
}

// RegisterFlags adds the config flags to a command's flag set. Flag
// defaults match Default so help output shows effective values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", DefaultHTTPAddr, "game API listen address")
	fs.String("metrics-addr", DefaultMetricsAddr, "metrics and health listen address (empty disables)")
	fs.String("database-url", "", "PostgreSQL connection URL (falls back to DATABASE_URL)")
	fs.String("world-path", "", "world definition file (empty loads the built-in world)")
	fs.String("spawn-room", "", "room new accounts start in (empty follows the world file)")
	fs.Int("recent-limit", DefaultRecentLimit, "chat messages returned by history queries")
	fs.String("log-format", DefaultLogFormat, "log output format (json or text)")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
}

// Load assembles the configuration. path names an explicit config
// file; when empty, DefaultPath is read if it exists. flags may be
// nil for commands that take no config flags. A missing explicit file
// is an error, a missing default file is not.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if path == "" {
		path = DefaultPath()
	}
	if explicit || fileExists(path) {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.In("config").
				Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrapf(err, "load config file")
		}
	}

	if flags != nil {
		p := posflag.ProviderWithValue(flags, ".", k, func(flag, value string) (string, any) {
			key, ok := flagKeys[flag]
			if !ok {
				return "", nil
			}
			return key, value
		})
		if err := k.Load(p, nil); err != nil {
			return Config{}, oops.In("config").
				Code("CONFIG_LOAD_FAILED").
				Wrapf(err, "apply flags")
		}
	}

	// Unmarshal onto the defaults; keys absent from the file and the
	// flag set keep their built-in values.
	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.In("config").
			Code("CONFIG_LOAD_FAILED").
			Wrapf(err, "decode config")
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if c.Listen.HTTP == "" {
		return oops.In("config").Code("CONFIG_INVALID").Errorf("listen.http cannot be empty")
	}
	if c.Chat.RecentLimit <= 0 {
		return oops.In("config").
			Code("CONFIG_INVALID").
			Errorf("chat.recent_limit must be positive, got %d", c.Chat.RecentLimit)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return oops.In("config").
			Code("CONFIG_INVALID").
			Errorf("log.format must be json or text, got %q", c.Log.Format)
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return oops.In("config").
			Code("CONFIG_INVALID").
			With("level", c.Log.Level).
			Wrapf(err, "parse log.level")
	}
	return nil
}

// SlogLevel converts log.level to a slog.Level. Unknown strings fall
// back to info; Validate rejects them before this is consulted.
func (c Log) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// fileExists returns true if the file exists, false otherwise.
// Permission errors are treated as "file exists" so unreadable config
// files fail loudly in Load instead of being skipped.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}
