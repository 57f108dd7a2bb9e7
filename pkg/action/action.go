// Package action defines the intents that drive every domain slice: an operation
// is described by four tagged messages (request, success, failure, clear message)
// that share a "<domain>/<op>" prefix.
package action

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

type Type string

// Action is an immutable, serializable message folded by reducers and, for
// request types, picked up by the effect runtime.
type Action struct {
	Type    Type `json:"type"`
	Payload any  `json:"payload,omitempty"`
}

func (a Action) String() string {
	return string(a.Type)
}

type Verb string

const (
	VerbRequest      Verb = "Request"
	VerbSuccess      Verb = "Success"
	VerbFailure      Verb = "Failure"
	VerbClearMessage Verb = "ClearMessage"
)

// Op carries the four action types of one operation. P is the request payload.
type Op[P any] struct {
	Domain string
	Name   string
}

// NewOp returns the action set for domain/name, e.g. NewOp[CreateParams]("group", "createGroup").
func NewOp[P any](domain, name string) Op[P] {
	return Op[P]{Domain: domain, Name: name}
}

func (o Op[P]) typeFor(v Verb) Type {
	return Type(fmt.Sprintf("%s/%s%s", o.Domain, o.Name, v))
}

func (o Op[P]) RequestType() Type      { return o.typeFor(VerbRequest) }
func (o Op[P]) SuccessType() Type      { return o.typeFor(VerbSuccess) }
func (o Op[P]) FailureType() Type      { return o.typeFor(VerbFailure) }
func (o Op[P]) ClearMessageType() Type { return o.typeFor(VerbClearMessage) }

// Types lists the four types in lifecycle order.
func (o Op[P]) Types() []Type {
	return []Type{o.RequestType(), o.SuccessType(), o.FailureType(), o.ClearMessageType()}
}

func (o Op[P]) Request(p P) Action {
	return Action{Type: o.RequestType(), Payload: p}
}

// Success wraps whatever the transport returned. Reducers extract defensively.
func (o Op[P]) Success(body json.RawMessage) Action {
	return Action{Type: o.SuccessType(), Payload: body}
}

func (o Op[P]) Failure(msg string) Action {
	return Action{Type: o.FailureType(), Payload: msg}
}

func (o Op[P]) ClearMessage() Action {
	return Action{Type: o.ClearMessageType()}
}

// Descriptor is the payload-agnostic view of an Op, used by registries and tooling.
type Descriptor struct {
	Domain       string
	Name         string
	Request      Type
	Success      Type
	Failure      Type
	ClearMessage Type
	// Decode turns a JSON document into a request action for this operation.
	Decode func(raw []byte) (Action, error)
}

func (o Op[P]) Describe() Descriptor {
	return Descriptor{
		Domain:       o.Domain,
		Name:         o.Name,
		Request:      o.RequestType(),
		Success:      o.SuccessType(),
		Failure:      o.FailureType(),
		ClearMessage: o.ClearMessageType(),
		Decode:       o.DecodeRequest,
	}
}

// DecodeRequest builds a request action from a JSON payload. An empty document
// yields the zero payload.
func (o Op[P]) DecodeRequest(raw []byte) (Action, error) {
	var p P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &p); err != nil {
			return Action{}, errors.Wrapf(err, "decode %s payload", o.RequestType())
		}
	}
	return o.Request(p), nil
}

// Plain builds a payload-less action for intents that never hit the network.
func Plain(t Type) Action {
	return Action{Type: t}
}

// PayloadAs returns the payload as P. Pointer payloads are dereferenced.
func PayloadAs[P any](a Action) (P, bool) {
	switch v := a.Payload.(type) {
	case P:
		return v, true
	case *P:
		if v != nil {
			return *v, true
		}
	}
	var zero P
	return zero, false
}

// Body returns the raw success body, or nil when the payload is something else.
func Body(a Action) json.RawMessage {
	switch v := a.Payload.(type) {
	case json.RawMessage:
		return v
	case []byte:
		return json.RawMessage(v)
	case string:
		return json.RawMessage(v)
	}
	return nil
}

// Message returns the failure payload string.
func Message(a Action) string {
	if s, ok := a.Payload.(string); ok {
		return s
	}
	return ""
}
