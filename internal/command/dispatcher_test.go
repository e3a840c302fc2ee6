// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DuskMUD Contributors

package command

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/duskmud/duskmud/internal/access"
	"github.com/duskmud/duskmud/internal/core"
)

func testActor() core.Actor {
	return core.Actor{Username: "alice", Role: access.RolePlayer}
}

func TestNewDispatcher_NilRegistry(t *testing.T) {
	_, err := NewDispatcher(nil)
	assert.ErrorIs(t, err, ErrNilRegistry)
}

func TestDispatcher_Dispatch(t *testing.T) {
	reg := NewRegistry()

	var capturedArgs string
	var capturedActor core.Actor
	err := reg.Register(Entry{
		Name:       "echo",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, actor core.Actor, args string) (core.Result, error) {
			capturedArgs = args
			capturedActor = actor
			return core.Okf("echoed: %s", args), nil
		},
	})
	require.NoError(t, err)

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), testActor(), "echo hello world")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "echoed: hello world", result.Message)
	assert.Equal(t, "hello world", capturedArgs)
	assert.Equal(t, "alice", capturedActor.Username)
}

func TestDispatcher_EmptyInput(t *testing.T) {
	reg := NewRegistry()
	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	for _, input := range []string{"", "   ", "\t"} {
		result, dispatchErr := dispatcher.Dispatch(context.Background(), testActor(), input)
		require.NoError(t, dispatchErr)
		assert.False(t, result.Success)
		assert.Equal(t, "Enter a command.", result.Message)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	reg := NewRegistry()
	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), testActor(), "frobnicate the widget")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Unknown command: frobnicate. Type 'help' for available commands.", result.Message)
}

func TestDispatcher_CaseInsensitiveName(t *testing.T) {
	reg := NewRegistry()

	var capturedArgs string
	_ = reg.Register(Entry{
		Name:       "say",
		Permission: access.PermChat,
		Handler: func(_ context.Context, _ core.Actor, args string) (core.Result, error) {
			capturedArgs = args
			return core.Okf("You say: %s", args), nil
		},
	})

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), testActor(), "SAY Hello There")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Hello There", capturedArgs, "argument case must be preserved")
}

func TestDispatcher_AliasDispatch(t *testing.T) {
	reg := NewRegistry()

	var invoked bool
	_ = reg.Register(Entry{
		Name:       "north",
		Aliases:    []string{"n"},
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			invoked = true
			return core.Okf("You move north."), nil
		},
	})

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), testActor(), "n")
	require.NoError(t, err)
	assert.True(t, invoked)
	assert.True(t, result.Success)
}

func TestDispatcher_PermissionDenied(t *testing.T) {
	reg := NewRegistry()

	var invoked bool
	_ = reg.Register(Entry{
		Name:       "grant",
		Permission: access.PermManageUsers,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			invoked = true
			return core.Okf("granted"), nil
		},
	})

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), testActor(), "grant bob admin")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "You don't have permission to do that.", result.Message)
	assert.False(t, invoked, "handler must not run for a denied actor")
}

func TestDispatcher_PermissionGranted(t *testing.T) {
	reg := NewRegistry()

	_ = reg.Register(Entry{
		Name:       "grant",
		Permission: access.PermManageUsers,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Okf("granted"), nil
		},
	})

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	actor := core.Actor{Username: "root", Role: access.RoleSuperuser}
	result, err := dispatcher.Dispatch(context.Background(), actor, "grant bob admin")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestDispatcher_FailureResultPassesThrough(t *testing.T) {
	reg := NewRegistry()

	_ = reg.Register(Entry{
		Name:       "east",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Failf("You cannot move east from here."), nil
		},
	})

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, err := dispatcher.Dispatch(context.Background(), testActor(), "east")
	require.NoError(t, err, "a failed game action is not an infrastructure error")
	assert.False(t, result.Success)
	assert.Equal(t, "You cannot move east from here.", result.Message)
}

func TestDispatcher_HandlerErrorPropagates(t *testing.T) {
	reg := NewRegistry()

	_ = reg.Register(Entry{
		Name:       "broken",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Result{}, oops.In("store").Code(CodeStorage).Errorf("connection reset")
		},
	})

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	result, dispatchErr := dispatcher.Dispatch(context.Background(), testActor(), "broken")
	require.Error(t, dispatchErr)
	assert.Equal(t, core.Result{}, result)

	oopsErr, ok := oops.AsOops(dispatchErr)
	require.True(t, ok)
	assert.Equal(t, CodeStorage, oopsErr.Code())
	assert.Equal(t, "Something went wrong. Try again.", PlayerMessage(dispatchErr))
}

func TestDispatcher_MetricsRecorded(t *testing.T) {
	reg := NewRegistry()

	err := reg.Register(Entry{
		Name:       "metrics_success",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Okf("ok"), nil
		},
	})
	require.NoError(t, err)

	err = reg.Register(Entry{
		Name:       "metrics_failing",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Failf("no"), nil
		},
	})
	require.NoError(t, err)

	err = reg.Register(Entry{
		Name:       "metrics_erroring",
		Permission: access.PermPlayGame,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Result{}, oops.Code(CodeStorage).Errorf("boom")
		},
	})
	require.NoError(t, err)

	err = reg.Register(Entry{
		Name:       "metrics_protected",
		Permission: access.PermManageUsers,
		Handler: func(_ context.Context, _ core.Actor, _ string) (core.Result, error) {
			return core.Okf("ok"), nil
		},
	})
	require.NoError(t, err)

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	successBefore := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_success", "status": StatusSuccess,
	}))
	failureBefore := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_failing", "status": StatusFailure,
	}))
	errorBefore := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_erroring", "status": StatusError,
	}))
	notFoundBefore := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": unknownCommandLabel, "status": StatusNotFound,
	}))
	permDeniedBefore := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_protected", "status": StatusPermissionDenied,
	}))

	ctx := context.Background()

	_, err = dispatcher.Dispatch(ctx, testActor(), "metrics_success")
	require.NoError(t, err)

	_, err = dispatcher.Dispatch(ctx, testActor(), "metrics_failing")
	require.NoError(t, err)

	_, err = dispatcher.Dispatch(ctx, testActor(), "metrics_erroring")
	require.Error(t, err)

	_, err = dispatcher.Dispatch(ctx, testActor(), "metrics_nonexistent")
	require.NoError(t, err)

	_, err = dispatcher.Dispatch(ctx, testActor(), "metrics_protected")
	require.NoError(t, err)

	successAfter := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_success", "status": StatusSuccess,
	}))
	failureAfter := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_failing", "status": StatusFailure,
	}))
	errorAfter := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_erroring", "status": StatusError,
	}))
	notFoundAfter := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": unknownCommandLabel, "status": StatusNotFound,
	}))
	permDeniedAfter := testutil.ToFloat64(CommandExecutions.With(prometheus.Labels{
		"command": "metrics_protected", "status": StatusPermissionDenied,
	}))

	assert.Equal(t, successBefore+1, successAfter, "should have success status")
	assert.Equal(t, failureBefore+1, failureAfter, "should have failure status")
	assert.Equal(t, errorBefore+1, errorAfter, "should have error status")
	assert.Equal(t, notFoundBefore+1, notFoundAfter, "unknown commands share one label value")
	assert.Equal(t, permDeniedBefore+1, permDeniedAfter, "should have permission_denied status")

	count := testutil.CollectAndCount(CommandDuration)
	assert.GreaterOrEqual(t, count, 1, "histogram should have at least one observation")
}

func TestDispatcher_ContextCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := NewRegistry()

	// Channel to signal handler received cancellation
	handlerStarted := make(chan struct{})
	handlerDone := make(chan struct{})
	var receivedCtxErr error

	err := reg.Register(Entry{
		Name:       "slow",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, _ core.Actor, _ string) (core.Result, error) {
			close(handlerStarted)
			// Wait for context cancellation or timeout
			<-ctx.Done()
			receivedCtxErr = ctx.Err()
			close(handlerDone)
			return core.Result{}, ctx.Err()
		},
	})
	require.NoError(t, err)

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	// Run dispatch in goroutine since handler blocks
	dispatchDone := make(chan error)
	go func() {
		_, dispatchErr := dispatcher.Dispatch(ctx, testActor(), "slow")
		dispatchDone <- dispatchErr
	}()

	// Wait for handler to start
	<-handlerStarted

	cancel()

	// Wait for handler to complete
	<-handlerDone

	assert.Equal(t, context.Canceled, receivedCtxErr)

	dispatchErr := <-dispatchDone
	assert.ErrorIs(t, dispatchErr, context.Canceled)
}

func TestDispatcher_ContextAlreadyCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := NewRegistry()

	var handlerRan bool
	err := reg.Register(Entry{
		Name:       "check",
		Permission: access.PermPlayGame,
		Handler: func(ctx context.Context, _ core.Actor, _ string) (core.Result, error) {
			handlerRan = true
			if ctx.Err() != nil {
				return core.Result{}, ctx.Err()
			}
			return core.Okf("ok"), nil
		},
	})
	require.NoError(t, err)

	dispatcher, err := NewDispatcher(reg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, dispatchErr := dispatcher.Dispatch(ctx, testActor(), "check")
	require.Error(t, dispatchErr)
	assert.ErrorIs(t, dispatchErr, context.Canceled)
	assert.True(t, handlerRan, "the handler decides how to react to a dead context")
}
