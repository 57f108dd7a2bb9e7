// Package store holds the root state tree: one slice per domain, each owned by
// that domain's reducer. Reducers run synchronously under the store lock, so a
// dispatch is run-to-completion with respect to every other dispatch.
package store

import (
	"sort"
	"sync"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/pkg/errors"
)

// Reducer folds one action into a domain slice. It must be pure and must
// return the slice unchanged for actions it does not handle.
type Reducer func(state any, a action.Action) any

// Status is the domain-agnostic view of a slice used by observers.
type Status struct {
	Loading  map[string]bool   `json:"loading"`
	Error    string            `json:"error,omitempty"`
	Messages map[string]string `json:"messages,omitempty"`
}

// Busy reports whether any loading flag is set.
func (s Status) Busy() bool {
	for _, v := range s.Loading {
		if v {
			return true
		}
	}
	return false
}

type Domain struct {
	Name    string
	Initial any
	Reduce  Reducer
	Status  func(state any) Status
}

// Middleware observes every action after it has been folded. It runs under
// the store lock and must not dispatch.
type Middleware func(a action.Action)

// Listener is notified after the lock is released.
type Listener func(a action.Action, version uint64)

type Snapshot map[string]any

type Store struct {
	mu         sync.Mutex
	domains    []Domain
	byName     map[string]int
	state      Snapshot
	version    uint64
	middleware []Middleware

	lmu       sync.Mutex
	listeners map[int]Listener
	nextID    int
}

// New composes the domains into one tree. Names must be unique.
func New(domains ...Domain) (*Store, error) {
	s := &Store{
		byName:    map[string]int{},
		state:     Snapshot{},
		listeners: map[int]Listener{},
	}
	for _, d := range domains {
		if d.Name == "" {
			return nil, errors.New("domain without name")
		}
		if d.Reduce == nil {
			return nil, errors.Errorf("domain %q has no reducer", d.Name)
		}
		if _, ok := s.byName[d.Name]; ok {
			return nil, errors.Errorf("duplicate domain %q", d.Name)
		}
		s.byName[d.Name] = len(s.domains)
		s.domains = append(s.domains, d)
		s.state[d.Name] = d.Initial
	}
	return s, nil
}

// Use appends a middleware. Call before the first dispatch.
func (s *Store) Use(m Middleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middleware = append(s.middleware, m)
}

func (s *Store) Subscribe(l Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners, id)
	}
}

// Dispatch folds each action in order.
func (s *Store) Dispatch(acts ...action.Action) {
	s.DispatchWhen(nil, acts...)
}

// DispatchWhen folds the actions only if cond holds. cond is evaluated under
// the store lock, atomically with the fold.
func (s *Store) DispatchWhen(cond func() bool, acts ...action.Action) bool {
	type note struct {
		a action.Action
		v uint64
	}

	s.mu.Lock()
	if cond != nil && !cond() {
		s.mu.Unlock()
		return false
	}
	notes := make([]note, 0, len(acts))
	for _, a := range acts {
		s.reduce(a)
		s.version++
		for _, m := range s.middleware {
			m(a)
		}
		notes = append(notes, note{a: a, v: s.version})
	}
	s.mu.Unlock()

	s.lmu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, n := range notes {
		for _, l := range ls {
			l(n.a, n.v)
		}
	}
	return true
}

func (s *Store) reduce(a action.Action) {
	next := make(Snapshot, len(s.state))
	for _, d := range s.domains {
		next[d.Name] = d.Reduce(s.state[d.Name], a)
	}
	s.state = next
}

// Snapshot returns the current tree. Slices are values; callers must not
// mutate shared reference fields.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

func (s *Store) Get(name string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.state[name]
	return v, ok
}

// Status reports the observer view of one domain.
func (s *Store) Status(name string) (Status, bool) {
	s.mu.Lock()
	idx, ok := s.byName[name]
	if !ok {
		s.mu.Unlock()
		return Status{}, false
	}
	d := s.domains[idx]
	st := s.state[name]
	s.mu.Unlock()

	if d.Status == nil {
		return Status{}, true
	}
	return d.Status(st), true
}

func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.domains))
	for _, d := range s.domains {
		out = append(out, d.Name)
	}
	return out
}

// Select reads a domain slice with its concrete type.
func Select[S any](s *Store, name string) (S, bool) {
	v, ok := s.Get(name)
	if !ok {
		var zero S
		return zero, false
	}
	st, ok := v.(S)
	return st, ok
}
