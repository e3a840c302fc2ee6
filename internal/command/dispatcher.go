// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package command

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/core"
)

var tracer = otel.Tracer("duskmud/command")

// ErrNilRegistry is returned when a dispatcher is constructed without
// a registry.
var ErrNilRegistry = errors.New("command: registry must not be nil")

// Dispatcher parses a command line, enforces the entry's permission,
// and executes the handler. Every malformed or unknown input comes
// back as a failure Result; a session never crashes on bad input.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a command dispatcher over the given registry.
func NewDispatcher(registry *Registry) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	return &Dispatcher{registry: registry}, nil
}

// Dispatch parses and executes a single command line for a validated
// actor. The Result mirrors every engine operation's shape: a success
// flag and a player-facing message. The error return carries only
// infrastructure faults; callers translate those with PlayerMessage.
func (d *Dispatcher) Dispatch(ctx context.Context, actor core.Actor, input string) (result core.Result, err error) {
	parsed := Parse(input)
	if parsed.Name == "" {
		return core.Failf("Enter a command."), nil
	}

	recorder := NewMetricsRecorder()
	defer recorder.Record()

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", parsed.Name),
			attribute.String("actor.username", actor.Username),
			attribute.String("actor.role", actor.Role.String()),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	entry, ok := d.registry.Get(parsed.Name)
	if !ok {
		recorder.SetCommandName(unknownCommandLabel)
		recorder.SetStatus(StatusNotFound)
		span.SetAttributes(attribute.Bool("command.unknown", true))
		return core.Failf("Unknown command: %s. Type 'help' for available commands.", parsed.Name), nil
	}

	recorder.SetCommandName(entry.Name)
	if entry.Name != parsed.Name {
		span.SetAttributes(attribute.String("command.invoked_as", parsed.Name))
	}

	// Explicit guard, not middleware: authorization runs here for every
	// dispatch regardless of what the transport did before us.
	if !access.HasPermission(actor.Role, entry.Permission) {
		recorder.SetStatus(StatusPermissionDenied)
		slog.WarnContext(ctx, "command denied",
			"command", entry.Name,
			"username", actor.Username,
			"role", actor.Role.String(),
			"permission", string(entry.Permission),
		)
		return core.Failf("You don't have permission to do that."), nil
	}

	result, err = entry.Handler(ctx, actor, parsed.Args)
	if err != nil {
		recorder.SetStatus(StatusError)
		slog.WarnContext(ctx, "command execution failed",
			"command", entry.Name,
			"username", actor.Username,
			"error", err,
		)
		return core.Result{}, err
	}

	if result.Success {
		recorder.SetStatus(StatusSuccess)
	} else {
		recorder.SetStatus(StatusFailure)
	}
	return result, nil
}
