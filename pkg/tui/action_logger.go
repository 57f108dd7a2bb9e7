package tui

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/rs/zerolog"
)

// ActionLogger publishes every dispatched action on TopicActions.
type ActionLogger struct {
	Pub message.Publisher
	// DomainOf resolves the owning slice of an action type, if known.
	DomainOf func(action.Type) (string, bool)
	Logger   zerolog.Logger
}

// Attach subscribes to s and returns the unsubscribe func.
func (l *ActionLogger) Attach(s *store.Store) func() {
	return s.Subscribe(l.Observe)
}

func (l *ActionLogger) Observe(a action.Action, version uint64) {
	entry := ActionEntry{Type: string(a.Type), Version: version, At: time.Now()}
	if l.DomainOf != nil {
		if d, ok := l.DomainOf(a.Type); ok {
			entry.Domain = d
		}
	}
	if a.Payload != nil {
		if raw := action.Body(a); raw != nil && json.Valid(raw) {
			entry.Payload = raw
		} else if b, err := json.Marshal(a.Payload); err == nil {
			entry.Payload = b
		}
	}

	env, err := NewEnvelope(DomainTypeActionDispatched, entry)
	if err == nil {
		var b []byte
		if b, err = env.MarshalJSONBytes(); err == nil {
			err = l.Pub.Publish(TopicActions, message.NewMessage(watermill.NewUUID(), b))
		}
	}
	if err != nil {
		l.Logger.Warn().Err(err).Str("type", string(a.Type)).Msg("could not publish action")
	}
}
