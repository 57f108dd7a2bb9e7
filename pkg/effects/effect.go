package effects

import (
	"context"
	"encoding/json"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/adapt"
	"github.com/go-go-golems/pickem/pkg/transport"
)

// FollowUp names the intents dispatched after a successful call.
type FollowUp[P any] func(p P, body json.RawMessage) []action.Action

// Effect is the untyped handler the runtime executes for one trigger type.
type Effect struct {
	Domain   string
	Name     string
	Trigger  action.Type
	Fallback string

	run       func(ctx context.Context, c transport.Doer, a action.Action) (json.RawMessage, error)
	success   func(body json.RawMessage) action.Action
	failure   func(msg string) action.Action
	followUps func(a action.Action, body json.RawMessage) []action.Action
}

func (e Effect) Effect() Effect { return e }

// Binder is anything that can produce an Effect.
type Binder interface {
	Effect() Effect
}

// Spec describes the single HTTP call behind one operation.
type Spec[P any] struct {
	op       action.Op[P]
	fallback string
	build    func(P) transport.Request
	selector string
	then     FollowUp[P]
}

// Call binds op to the request produced by build. fallback is stored when a
// failure carries no usable message.
func Call[P any](op action.Op[P], fallback string, build func(P) transport.Request) Spec[P] {
	return Spec[P]{op: op, fallback: fallback, build: build}
}

// Select narrows the success payload to a sub-document before it is dispatched.
func (s Spec[P]) Select(path string) Spec[P] {
	s.selector = path
	return s
}

// Then registers the follow-up intents of a successful call.
func (s Spec[P]) Then(fn FollowUp[P]) Spec[P] {
	s.then = fn
	return s
}

func (s Spec[P]) Effect() Effect {
	op := s.op
	build := s.build
	selector := s.selector
	then := s.then

	e := Effect{
		Domain:   op.Domain,
		Name:     op.Name,
		Trigger:  op.RequestType(),
		Fallback: s.fallback,
		run: func(ctx context.Context, c transport.Doer, a action.Action) (json.RawMessage, error) {
			p, _ := action.PayloadAs[P](a)
			resp, err := c.Do(ctx, build(p))
			if err != nil {
				return nil, err
			}
			body := resp.Body
			if selector != "" {
				body = adapt.Sub(body, selector)
				if body == nil {
					body = json.RawMessage("null")
				}
			}
			return body, nil
		},
		success: op.Success,
		failure: op.Failure,
	}
	if then != nil {
		e.followUps = func(a action.Action, body json.RawMessage) []action.Action {
			p, _ := action.PayloadAs[P](a)
			return then(p, body)
		}
	}
	return e
}

// Saga is the set of effects one domain watches.
type Saga struct {
	Name    string
	Effects []Effect
}

func NewSaga(name string, binders ...Binder) Saga {
	s := Saga{Name: name}
	for _, b := range binders {
		s.Effects = append(s.Effects, b.Effect())
	}
	return s
}
