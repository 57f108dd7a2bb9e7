// Package effects runs the sagas: for every request action with a registered
// effect it performs one transport call and dispatches the matching success
// or failure. Dispatching a request again before the previous call returns
// supersedes it; the older result is dropped before it reaches the store.
package effects

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Dispatcher is the narrow store capability the runtime needs.
type Dispatcher interface {
	Dispatch(acts ...action.Action)
	DispatchWhen(cond func() bool, acts ...action.Action) bool
}

type invocation struct {
	effect Effect
	action action.Action
	gen    uint64
}

// watcher owns the queue of one saga.
type watcher struct {
	name   string
	mu     sync.Mutex
	queue  []invocation
	notify chan struct{}
}

func (w *watcher) enqueue(inv invocation) {
	w.mu.Lock()
	w.queue = append(w.queue, inv)
	w.mu.Unlock()
	select {
	case w.notify <- struct{}{}:
	default:
	}
}

func (w *watcher) drain() []invocation {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := w.queue
	w.queue = nil
	return q
}

type registration struct {
	effect  Effect
	watcher *watcher
}

type Runtime struct {
	disp   Dispatcher
	client transport.Doer
	logger zerolog.Logger

	mu       sync.Mutex
	effects  map[action.Type]registration
	watchers []*watcher
	running  bool

	latest   *latest
	handlers sync.WaitGroup
}

type RuntimeOption func(*Runtime)

func WithLogger(l zerolog.Logger) RuntimeOption {
	return func(r *Runtime) { r.logger = l }
}

func NewRuntime(disp Dispatcher, client transport.Doer, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		disp:    disp,
		client:  client,
		logger:  zerolog.Nop(),
		effects: map[action.Type]registration{},
		latest:  newLatest(),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Register adds sagas. Each trigger type may have exactly one effect.
func (r *Runtime) Register(sagas ...Saga) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return errors.New("register after start")
	}
	added := map[action.Type]registration{}
	var watchers []*watcher
	for _, s := range sagas {
		if s.Name == "" {
			return errors.New("saga without name")
		}
		w := &watcher{name: s.Name, notify: make(chan struct{}, 1)}
		for _, e := range s.Effects {
			if e.Trigger == "" || e.run == nil {
				return errors.Errorf("saga %s: incomplete effect %q", s.Name, e.Name)
			}
			prev, ok := r.effects[e.Trigger]
			if !ok {
				prev, ok = added[e.Trigger]
			}
			if ok {
				return errors.Errorf("saga %s: %s already handled by saga %s", s.Name, e.Trigger, prev.watcher.name)
			}
			added[e.Trigger] = registration{effect: e, watcher: w}
		}
		watchers = append(watchers, w)
	}
	for t, reg := range added {
		r.effects[t] = reg
	}
	r.watchers = append(r.watchers, watchers...)
	return nil
}

// Triggers lists every request type with a registered effect.
func (r *Runtime) Triggers() []action.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]action.Type, 0, len(r.effects))
	for t := range r.effects {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Middleware is installed on the store. It runs under the store lock, so the
// generation bump is ordered with the request's fold.
func (r *Runtime) Middleware(a action.Action) {
	r.mu.Lock()
	reg, ok := r.effects[a.Type]
	r.mu.Unlock()
	if !ok {
		return
	}
	gen := r.latest.bump(a.Type)
	reg.watcher.enqueue(invocation{effect: reg.effect, action: a, gen: gen})
}

// InFlight reports how many calls for trigger have not returned yet.
func (r *Runtime) InFlight(trigger action.Type) int {
	return r.latest.inflight(trigger)
}

// Pending reports how many calls of any trigger have not returned yet. A
// request counts from the moment it is dispatched, before a watcher picks it up.
func (r *Runtime) Pending() int {
	return r.latest.pending()
}

// Run starts one watcher per saga and blocks until ctx is done. Results
// arriving after shutdown are dropped.
func (r *Runtime) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("runtime already running")
	}
	r.running = true
	watchers := append([]*watcher{}, r.watchers...)
	r.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range watchers {
		w := w
		g.Go(func() error {
			return r.watch(gctx, w)
		})
	}
	err := g.Wait()

	cause := context.Cause(gctx)
	if cause == nil {
		cause = context.Canceled
	}
	r.latest.failAll(errors.Wrap(cause, "runtime stopped"))
	r.handlers.Wait()
	return err
}

func (r *Runtime) watch(ctx context.Context, w *watcher) error {
	r.logger.Debug().Str("saga", w.name).Msg("watcher started")
	for {
		for _, inv := range w.drain() {
			r.handlers.Add(1)
			go r.invoke(ctx, inv)
		}
		select {
		case <-ctx.Done():
			r.logger.Debug().Str("saga", w.name).Msg("watcher stopped")
			return nil
		case <-w.notify:
		}
	}
}

func (r *Runtime) invoke(ctx context.Context, inv invocation) {
	defer r.handlers.Done()
	trigger := inv.action.Type
	defer r.latest.settle(trigger)

	body, failure := r.call(ctx, inv)

	var terminal action.Action
	if failure != nil {
		terminal = inv.effect.failure(ExtractErrorMessage(failure, inv.effect.Fallback))
	} else {
		terminal = inv.effect.success(body)
	}

	acts := []action.Action{terminal}
	if failure == nil {
		acts = append(acts, r.followUps(inv, body)...)
	}

	// follow-ups fold in the same critical section as the terminal action, so
	// no observer sees the trigger settled before its follow-up requests start
	delivered := r.disp.DispatchWhen(func() bool {
		return ctx.Err() == nil && r.latest.current(trigger, inv.gen)
	}, acts...)
	if !delivered {
		r.logger.Debug().
			Str("trigger", string(trigger)).
			Uint64("generation", inv.gen).
			Msg("dropping superseded result")
		return
	}

	if failure != nil {
		r.logger.Debug().Str("trigger", string(trigger)).Str("error", action.Message(terminal)).Msg("effect failed")
	}
}

func (r *Runtime) followUps(inv invocation, body json.RawMessage) (next []action.Action) {
	if inv.effect.followUps == nil {
		return nil
	}
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error().
				Str("trigger", string(inv.action.Type)).
				Str("panic", fmt.Sprint(v)).
				Msg("follow-up builder panicked")
			next = nil
		}
	}()
	return inv.effect.followUps(inv.action, body)
}

// call runs the transport call and converts a panic into a failure value.
func (r *Runtime) call(ctx context.Context, inv invocation) (body json.RawMessage, failure any) {
	defer func() {
		if v := recover(); v != nil {
			r.logger.Error().
				Str("trigger", string(inv.action.Type)).
				Str("panic", fmt.Sprint(v)).
				Msg("effect panicked")
			body, failure = nil, v
		}
	}()
	b, err := inv.effect.run(ctx, r.client, inv.action)
	if err != nil {
		return nil, err
	}
	return b, nil
}
