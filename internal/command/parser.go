// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package command

import "strings"

// ParsedCommand represents a parsed command input.
type ParsedCommand struct {
	Name string // lowercased first whitespace-delimited token; "" for blank input
	Args string // unparsed argument string (preserves internal whitespace)
	Raw  string // original input
}

// Parse splits raw input into command name and arguments. The command
// name is the lowercased first token; argument text keeps its case and
// internal whitespace. Blank input parses to an empty Name so the
// dispatcher can answer with a prompt instead of an error.
func Parse(input string) ParsedCommand {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ParsedCommand{Raw: input}
	}

	idx := strings.IndexAny(trimmed, " \t")
	if idx == -1 {
		return ParsedCommand{
			Name: strings.ToLower(trimmed),
			Raw:  input,
		}
	}

	name := strings.ToLower(trimmed[:idx])
	args := strings.TrimLeft(trimmed[idx+1:], " \t")

	return ParsedCommand{
		Name: name,
		Args: args,
		Raw:  input,
	}
}
