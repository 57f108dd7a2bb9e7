package tui

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/domains/group"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan *message.Message) Envelope {
	t.Helper()
	select {
	case m := <-ch:
		m.Ack()
		env, err := ParseEnvelope(m.Payload)
		require.NoError(t, err)
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
		return Envelope{}
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(DomainTypeRequestSettled, RequestSettled{Domain: "group", Class: "loading"})
	require.NoError(t, err)
	b, err := env.MarshalJSONBytes()
	require.NoError(t, err)

	got, err := ParseEnvelope(b)
	require.NoError(t, err)
	msg, err := ToMsg(got)
	require.NoError(t, err)
	require.Equal(t, "group", msg.(RequestSettledMsg).Event.Domain)

	_, err = ParseEnvelope([]byte(`{"payload":{}}`))
	require.Error(t, err)
	_, err = ToMsg(Envelope{Type: "other"})
	require.Error(t, err)
}

func TestStateWatcherPublishesSnapshotsAndSettles(t *testing.T) {
	s, err := store.New(group.Slice().Domain())
	require.NoError(t, err)
	bus := NewBus(zerolog.Nop())
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, TopicState)
	require.NoError(t, err)

	w := &StateWatcher{Store: s, Pub: bus, WithSlices: true}

	s.Dispatch(group.FetchAllGroups.Request(group.ListParams{}))
	require.NoError(t, w.emitSnapshot())
	env := next(t, ch)
	require.Equal(t, DomainTypeStateSnapshot, env.Type)
	var snap StateSnapshot
	require.NoError(t, env.Decode(&snap))
	d, ok := snap.Find(group.Name)
	require.True(t, ok)
	require.True(t, d.Status.Busy())
	require.Contains(t, snap.Slices, group.Name)

	s.Dispatch(group.FetchAllGroups.Failure("Group Fetching Failed"))
	require.NoError(t, w.emitSnapshot())
	env = next(t, ch)
	require.Equal(t, DomainTypeRequestSettled, env.Type)
	var ev RequestSettled
	require.NoError(t, env.Decode(&ev))
	require.Equal(t, group.Name, ev.Domain)
	require.Equal(t, "loading", ev.Class)
	require.Equal(t, "Group Fetching Failed", ev.Error)

	require.Equal(t, DomainTypeStateSnapshot, next(t, ch).Type)
}

func TestActionLoggerPublishes(t *testing.T) {
	s, err := store.New(group.Slice().Domain())
	require.NoError(t, err)
	bus := NewBus(zerolog.Nop())
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, TopicActions)
	require.NoError(t, err)

	l := &ActionLogger{Pub: bus, DomainOf: func(action.Type) (string, bool) { return group.Name, true }}
	defer l.Attach(s)()

	s.Dispatch(group.FetchGroupByID.Request(group.IDParams{GroupID: "g1"}))
	env := next(t, ch)
	var e ActionEntry
	require.NoError(t, env.Decode(&e))
	require.Equal(t, string(group.FetchGroupByID.RequestType()), e.Type)
	require.Equal(t, group.Name, e.Domain)
	require.Equal(t, uint64(1), e.Version)
	require.JSONEq(t, `{"group_id":"g1"}`, string(e.Payload))

	s.Dispatch(group.FetchGroupByID.Success(json.RawMessage(`{"data":{"group":{"id":"g1"}}}`)))
	env = next(t, ch)
	require.NoError(t, env.Decode(&e))
	require.JSONEq(t, `{"data":{"group":{"id":"g1"}}}`, string(e.Payload))
}

func TestForwardRelaysToSend(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	defer func() { _ = bus.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan tea.Msg, 64)
	done := make(chan error, 1)
	go func() {
		done <- Forward(ctx, bus, func(m tea.Msg) { got <- m }, zerolog.Nop())
	}()

	l := &ActionLogger{Pub: bus}
	require.Eventually(t, func() bool {
		l.Observe(action.Plain("auth/logout"), 7)
		select {
		case m := <-got:
			return m.(ActionAppendMsg).Entry.Version == 7
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
