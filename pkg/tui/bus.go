package tui

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// NewBus is the in-process pub/sub shared by the loggers, the watcher and the UI.
func NewBus(logger zerolog.Logger) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, zerologAdapter{l: logger})
}

type zerologAdapter struct {
	l zerolog.Logger
}

var _ watermill.LoggerAdapter = zerologAdapter{}

func (a zerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.l.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a zerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.l.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a zerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.l.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a zerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.l.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

func (a zerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return zerologAdapter{l: a.l.With().Fields(map[string]interface{}(fields)).Logger()}
}

// ToMsg turns an envelope into the bubbletea message the models handle.
func ToMsg(env Envelope) (tea.Msg, error) {
	switch env.Type {
	case DomainTypeActionDispatched:
		var e ActionEntry
		if err := env.Decode(&e); err != nil {
			return nil, err
		}
		return ActionAppendMsg{Entry: e}, nil
	case DomainTypeStateSnapshot:
		var s StateSnapshot
		if err := env.Decode(&s); err != nil {
			return nil, err
		}
		return StateSnapshotMsg{Snapshot: s}, nil
	case DomainTypeRequestSettled:
		var ev RequestSettled
		if err := env.Decode(&ev); err != nil {
			return nil, err
		}
		return RequestSettledMsg{Event: ev}, nil
	}
	return nil, errors.Errorf("unknown envelope type %q", env.Type)
}

// Forward relays both topics to send until ctx is done. Malformed messages
// are acked and skipped.
func Forward(ctx context.Context, sub message.Subscriber, send func(tea.Msg), logger zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range []string{TopicActions, TopicState} {
		ch, err := sub.Subscribe(gctx, topic)
		if err != nil {
			return errors.Wrapf(err, "subscribe %s", topic)
		}
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case m, ok := <-ch:
					if !ok {
						return nil
					}
					env, err := ParseEnvelope(m.Payload)
					m.Ack()
					if err != nil {
						logger.Debug().Err(err).Msg("skipping malformed message")
						continue
					}
					msg, err := ToMsg(env)
					if err != nil {
						logger.Debug().Err(err).Msg("skipping unknown message")
						continue
					}
					send(msg)
				}
			}
		})
	}
	return g.Wait()
}
