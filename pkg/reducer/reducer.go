// Package reducer builds a domain reducer from a table of arms. Every arm
// binds one operation to an operation class (its loading flag, the error
// field and its message field) and to the response adapter that stores the
// success payload. The lifecycle rules live here once:
//
//   - request: loading=true, error cleared
//   - success: loading=false, adapter applied, optional message captured
//   - failure: loading=false, error=payload, data untouched
//   - clear:   error and the class message cleared
package reducer

import (
	"encoding/json"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/adapt"
	"github.com/go-go-golems/pickem/pkg/store"
)

// Class groups operations that share a loading flag and a message field.
type Class[S any] struct {
	Name    string
	Loading func(*S) *bool
	Error   func(*S) *string
	Message func(*S) *string
}

// Adapter stores a success body into the slice.
type Adapter[S any] func(s *S, body json.RawMessage)

type Arm[S any] struct {
	Class Class[S]
	// OnSuccess is the operation's response adapter.
	OnSuccess Adapter[S]
	// CaptureMessage copies the body's "message" into the class message field.
	CaptureMessage bool

	request, success, failure, clear action.Type
}

// On starts an arm for op.
func On[S any, P any](op action.Op[P], class Class[S]) Arm[S] {
	return Arm[S]{
		Class:   class,
		request: op.RequestType(),
		success: op.SuccessType(),
		failure: op.FailureType(),
		clear:   op.ClearMessageType(),
	}
}

func (a Arm[S]) Store(fn Adapter[S]) Arm[S] {
	a.OnSuccess = fn
	return a
}

func (a Arm[S]) WithMessage() Arm[S] {
	a.CaptureMessage = true
	return a
}

type verb int

const (
	verbRequest verb = iota
	verbSuccess
	verbFailure
	verbClear
)

type route[S any] struct {
	arm  Arm[S]
	verb verb
}

// Slice is a domain's reducer table plus its extra, non-lifecycle handlers.
type Slice[S any] struct {
	Name    string
	Initial S

	classes []Class[S]
	routes  map[action.Type]route[S]
	plain   map[action.Type]func(S, action.Action) S
}

func New[S any](name string, initial S, classes ...Class[S]) *Slice[S] {
	return &Slice[S]{
		Name:    name,
		Initial: initial,
		classes: classes,
		routes:  map[action.Type]route[S]{},
		plain:   map[action.Type]func(S, action.Action) S{},
	}
}

// Arms registers lifecycle arms. A later arm for the same op replaces an earlier one.
func (sl *Slice[S]) Arms(arms ...Arm[S]) *Slice[S] {
	for _, a := range arms {
		sl.routes[a.request] = route[S]{arm: a, verb: verbRequest}
		sl.routes[a.success] = route[S]{arm: a, verb: verbSuccess}
		sl.routes[a.failure] = route[S]{arm: a, verb: verbFailure}
		sl.routes[a.clear] = route[S]{arm: a, verb: verbClear}
	}
	return sl
}

// Handle registers a plain handler, e.g. logout.
func (sl *Slice[S]) Handle(t action.Type, fn func(S, action.Action) S) *Slice[S] {
	sl.plain[t] = fn
	return sl
}

// Types lists every action type the slice reacts to.
func (sl *Slice[S]) Types() []action.Type {
	out := make([]action.Type, 0, len(sl.routes)+len(sl.plain))
	for t := range sl.routes {
		out = append(out, t)
	}
	for t := range sl.plain {
		out = append(out, t)
	}
	return out
}

// Reduce folds a into s.
func (sl *Slice[S]) Reduce(s S, a action.Action) S {
	if fn, ok := sl.plain[a.Type]; ok {
		return fn(s, a)
	}
	r, ok := sl.routes[a.Type]
	if !ok {
		return s
	}
	next := s
	c := r.arm.Class
	switch r.verb {
	case verbRequest:
		setBool(c.Loading, &next, true)
		setString(c.Error, &next, "")
	case verbSuccess:
		body := action.Body(a)
		next = applySuccess(r.arm, next, body)
		setBool(c.Loading, &next, false)
	case verbFailure:
		setBool(c.Loading, &next, false)
		setString(c.Error, &next, action.Message(a))
	case verbClear:
		setString(c.Error, &next, "")
		setString(c.Message, &next, "")
	}
	return next
}

// applySuccess runs the adapter; a panicking adapter leaves the slice as it
// was before the adapter ran.
func applySuccess[S any](arm Arm[S], s S, body json.RawMessage) (out S) {
	out = s
	defer func() {
		if recover() != nil {
			out = s
		}
	}()
	next := s
	if arm.OnSuccess != nil {
		arm.OnSuccess(&next, body)
	}
	if arm.CaptureMessage {
		setString(arm.Class.Message, &next, adapt.Message(body))
	}
	return next
}

func setBool[S any](f func(*S) *bool, s *S, v bool) {
	if f == nil {
		return
	}
	if p := f(s); p != nil {
		*p = v
	}
}

func setString[S any](f func(*S) *string, s *S, v string) {
	if f == nil {
		return
	}
	if p := f(s); p != nil {
		*p = v
	}
}

// Status derives the observer view from the slice's classes.
func (sl *Slice[S]) Status(s S) store.Status {
	st := store.Status{Loading: map[string]bool{}, Messages: map[string]string{}}
	for _, c := range sl.classes {
		if c.Loading != nil {
			if p := c.Loading(&s); p != nil {
				st.Loading[c.Name] = *p
			}
		}
		if c.Error != nil && st.Error == "" {
			if p := c.Error(&s); p != nil {
				st.Error = *p
			}
		}
		if c.Message != nil {
			if p := c.Message(&s); p != nil && *p != "" {
				st.Messages[c.Name] = *p
			}
		}
	}
	return st
}

// Domain adapts the slice to the store's untyped contract.
func (sl *Slice[S]) Domain() store.Domain {
	return store.Domain{
		Name:    sl.Name,
		Initial: sl.Initial,
		Reduce: func(state any, a action.Action) any {
			s, ok := state.(S)
			if !ok {
				s = sl.Initial
			}
			return sl.Reduce(s, a)
		},
		Status: func(state any) store.Status {
			s, ok := state.(S)
			if !ok {
				s = sl.Initial
			}
			return sl.Status(s)
		},
	}
}
