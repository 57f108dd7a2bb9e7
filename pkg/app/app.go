// Package app composes every domain into one store and one effect runtime,
// and exposes the operation registry used by the CLI, the UI and scripts.
package app

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/domains/auth"
	"github.com/go-go-golems/pickem/pkg/domains/feed"
	"github.com/go-go-golems/pickem/pkg/domains/group"
	"github.com/go-go-golems/pickem/pkg/domains/leaderboard"
	"github.com/go-go-golems/pickem/pkg/domains/nba"
	"github.com/go-go-golems/pickem/pkg/domains/nfl"
	"github.com/go-go-golems/pickem/pkg/domains/pick"
	"github.com/go-go-golems/pickem/pkg/domains/progress"
	"github.com/go-go-golems/pickem/pkg/domains/slip"
	"github.com/go-go-golems/pickem/pkg/effects"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/go-go-golems/pickem/pkg/supervise"
	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Module is one domain's contribution to the app.
type Module struct {
	Domain store.Domain
	Saga   effects.Saga
	Ops    []action.Descriptor
	// Plain lists the intents that never reach the network.
	Plain []action.Type
}

func Modules() []Module {
	return []Module{
		{Domain: auth.Slice().Domain(), Saga: auth.Saga(), Ops: auth.Ops(), Plain: []action.Type{auth.LogoutType, auth.RestoreType}},
		{Domain: group.Slice().Domain(), Saga: group.Saga(), Ops: group.Ops()},
		{Domain: leaderboard.Slice().Domain(), Saga: leaderboard.Saga(), Ops: leaderboard.Ops()},
		{Domain: slip.Slice().Domain(), Saga: slip.Saga(), Ops: slip.Ops()},
		{Domain: pick.Slice().Domain(), Saga: pick.Saga(), Ops: pick.Ops()},
		{Domain: feed.Slice().Domain(), Saga: feed.Saga(), Ops: feed.Ops()},
		{Domain: nfl.Slice().Domain(), Saga: nfl.Saga(), Ops: nfl.Ops()},
		{Domain: nba.Slice().Domain(), Saga: nba.Saga(), Ops: nba.Ops()},
		{Domain: progress.Slice().Domain(), Saga: progress.Saga(), Ops: progress.Ops()},
	}
}

type Options struct {
	Logger          zerolog.Logger
	ShutdownTimeout time.Duration
	Modules         []Module
}

type App struct {
	Store   *store.Store
	Runtime *effects.Runtime

	logger   zerolog.Logger
	shutdown time.Duration
	ops      map[action.Type]action.Descriptor
	plain    map[action.Type]string
}

// New wires the store and runtime. Duplicate domains or triggers fail here,
// before anything runs.
func New(client transport.Doer, opts Options) (*App, error) {
	if client == nil {
		return nil, errors.New("nil transport")
	}
	mods := opts.Modules
	if mods == nil {
		mods = Modules()
	}

	domains := make([]store.Domain, 0, len(mods))
	sagas := make([]effects.Saga, 0, len(mods))
	a := &App{
		logger:   opts.Logger,
		shutdown: opts.ShutdownTimeout,
		ops:      map[action.Type]action.Descriptor{},
		plain:    map[action.Type]string{},
	}
	for _, m := range mods {
		domains = append(domains, m.Domain)
		sagas = append(sagas, m.Saga)
		for _, d := range m.Ops {
			if _, dup := a.ops[d.Request]; dup {
				return nil, errors.Errorf("duplicate operation %s", d.Request)
			}
			a.ops[d.Request] = d
		}
		for _, t := range m.Plain {
			a.plain[t] = m.Domain.Name
		}
	}

	s, err := store.New(domains...)
	if err != nil {
		return nil, errors.Wrap(err, "compose store")
	}
	rt := effects.NewRuntime(s, client, effects.WithLogger(opts.Logger))
	if err := rt.Register(sagas...); err != nil {
		return nil, errors.Wrap(err, "register sagas")
	}
	s.Use(rt.Middleware)

	a.Store = s
	a.Runtime = rt
	return a, nil
}

// Ops lists every operation sorted by request type.
func (a *App) Ops() []action.Descriptor {
	out := make([]action.Descriptor, 0, len(a.ops))
	for _, d := range a.ops {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Request < out[j].Request })
	return out
}

// PlainTypes lists the network-free intents.
func (a *App) PlainTypes() []action.Type {
	out := make([]action.Type, 0, len(a.plain))
	for t := range a.plain {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup finds the operation owning t, which may be any of its four types.
func (a *App) Lookup(t action.Type) (action.Descriptor, bool) {
	if d, ok := a.ops[t]; ok {
		return d, true
	}
	for _, d := range a.ops {
		if d.Success == t || d.Failure == t || d.ClearMessage == t {
			return d, true
		}
	}
	return action.Descriptor{}, false
}

// ClearMessages returns the clear-message intent of every operation of domain.
func (a *App) ClearMessages(domain string) []action.Action {
	var out []action.Action
	for _, d := range a.Ops() {
		if d.Domain == domain {
			out = append(out, action.Plain(d.ClearMessage))
		}
	}
	return out
}

// DomainOf reports which slice an action type belongs to.
func (a *App) DomainOf(t action.Type) (string, bool) {
	if d, ok := a.Lookup(t); ok {
		return d.Domain, true
	}
	name, ok := a.plain[t]
	return name, ok
}

// Decode builds an action from its type and a JSON payload. Request types
// decode into the operation's params; plain intents keep the raw document.
func (a *App) Decode(t action.Type, payload []byte) (action.Action, error) {
	if d, ok := a.ops[t]; ok {
		act, err := d.Decode(payload)
		if err != nil {
			return action.Action{}, errors.Wrapf(err, "decode %s", t)
		}
		return act, nil
	}
	if d, ok := a.Lookup(t); ok && t == d.ClearMessage {
		return action.Plain(t), nil
	}
	if _, ok := a.plain[t]; ok {
		if len(payload) == 0 {
			return action.Plain(t), nil
		}
		if t == auth.RestoreType {
			var p auth.RestoreParams
			if err := json.Unmarshal(payload, &p); err != nil {
				return action.Action{}, errors.Wrapf(err, "decode %s", t)
			}
			return auth.Restore(p), nil
		}
		return action.Action{Type: t, Payload: json.RawMessage(payload)}, nil
	}
	return action.Action{}, errors.Errorf("unknown action type %q", t)
}

// WaitIdle blocks until no loading flag of domain is set.
func (a *App) WaitIdle(ctx context.Context, domain string, poll time.Duration) error {
	return a.poll(ctx, "waiting for "+domain, poll, func() (bool, error) {
		st, ok := a.Store.Status(domain)
		if !ok {
			return false, errors.Errorf("unknown domain %q", domain)
		}
		return !st.Busy(), nil
	})
}

// WaitSettled blocks until every dispatched call, follow-ups included, has
// returned and its result has been folded. Use it before shutting down when
// late follow-ups must not be dropped.
func (a *App) WaitSettled(ctx context.Context, poll time.Duration) error {
	return a.poll(ctx, "waiting for pending calls", poll, func() (bool, error) {
		return a.Runtime.Pending() == 0, nil
	})
}

func (a *App) poll(ctx context.Context, what string, every time.Duration, done func() (bool, error)) error {
	if every <= 0 {
		every = 10 * time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		ok, err := done()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), what)
		case <-t.C:
		}
	}
}

// Run supervises the effect runtime plus any extra loops until ctx is done
// or one of them fails.
func (a *App) Run(ctx context.Context, extra ...supervise.Task) error {
	sup := supervise.New(supervise.Options{ShutdownTimeout: a.shutdown, Logger: a.logger})
	sup.Add("effects", a.Runtime.Run)
	for _, t := range extra {
		sup.Add(t.Name, t.Run)
	}
	return sup.Run(ctx)
}
