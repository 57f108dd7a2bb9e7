// Package effectstest wires a store, a runtime and a scripted transport for
// domain tests.
package effectstest

import (
	"context"
	"testing"
	"time"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/effects"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/go-go-golems/pickem/pkg/transport/transporttest"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type Harness struct {
	Store   *store.Store
	Fake    *transporttest.Fake
	Runtime *effects.Runtime

	seen chan action.Action
}

// New starts a runtime over the given domains; it is stopped on test cleanup.
func New(t *testing.T, domains []store.Domain, sagas ...effects.Saga) *Harness {
	t.Helper()
	s, err := store.New(domains...)
	require.NoError(t, err)

	fake := transporttest.New()
	rt := effects.NewRuntime(s, fake)
	require.NoError(t, rt.Register(sagas...))
	s.Use(rt.Middleware)

	h := &Harness{Store: s, Fake: fake, Runtime: rt, seen: make(chan action.Action, 1024)}
	s.Subscribe(func(a action.Action, _ uint64) {
		select {
		case h.seen <- a:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return h
}

// Dispatch folds a and waits until one of the terminal types has been dispatched.
func (h *Harness) Dispatch(t *testing.T, a action.Action, until ...action.Type) {
	t.Helper()
	h.Store.Dispatch(a)
	if len(until) == 0 {
		return
	}
	h.WaitFor(t, until...)
}

// WaitFor blocks until one of the given types has been dispatched.
func (h *Harness) WaitFor(t *testing.T, types ...action.Type) action.Action {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case a := <-h.seen:
			for _, want := range types {
				if a.Type == want {
					return a
				}
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %v", types)
			return action.Action{}
		}
	}
}

// Settled waits for one of op's terminal actions.
func Settled[P any](t *testing.T, h *Harness, op action.Op[P]) action.Action {
	t.Helper()
	return h.WaitFor(t, op.SuccessType(), op.FailureType())
}

// Run dispatches op's request and waits for its success or failure.
func Run[P any](t *testing.T, h *Harness, op action.Op[P], p P) action.Action {
	t.Helper()
	h.Store.Dispatch(op.Request(p))
	return Settled(t, h, op)
}

// State reads a slice with its concrete type.
func State[S any](t *testing.T, h *Harness, name string) S {
	t.Helper()
	st, ok := store.Select[S](h.Store, name)
	require.True(t, ok, "domain %s", name)
	return st
}

// Eventually polls cond with the harness defaults.
func (h *Harness) Eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, waitFor, tick)
}
