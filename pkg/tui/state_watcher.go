package tui

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/pickem/pkg/store"
	"github.com/pkg/errors"
)

// Source is the read side of the store the watcher polls.
type Source interface {
	Names() []string
	Status(name string) (store.Status, bool)
	Snapshot() store.Snapshot
	Version() uint64
}

// StateWatcher polls the store and publishes snapshots on TopicState, plus a
// request.settled event whenever a loading flag drops between two polls.
// Transitions that start and finish between polls are not observed.
type StateWatcher struct {
	Store    Source
	Interval time.Duration
	Pub      message.Publisher
	// WithSlices embeds each slice as JSON in the snapshot.
	WithSlices bool

	lastLoading map[string]map[string]bool
}

func (w *StateWatcher) Run(ctx context.Context) error {
	if w.Store == nil {
		return errors.New("missing Store")
	}
	if w.Pub == nil {
		return errors.New("missing Publisher")
	}
	if w.Interval <= 0 {
		w.Interval = 250 * time.Millisecond
	}

	t := time.NewTicker(w.Interval)
	defer t.Stop()

	for {
		if err := w.emitSnapshot(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}

func (w *StateWatcher) emitSnapshot() error {
	snap := StateSnapshot{At: time.Now(), Version: w.Store.Version()}
	loading := map[string]map[string]bool{}
	var settled []RequestSettled

	for _, name := range w.Store.Names() {
		st, ok := w.Store.Status(name)
		if !ok {
			continue
		}
		snap.Domains = append(snap.Domains, DomainStatus{Name: name, Status: st})
		loading[name] = st.Loading

		prev := w.lastLoading[name]
		for class, was := range prev {
			if was && !st.Loading[class] {
				settled = append(settled, RequestSettled{
					Domain:  name,
					Class:   class,
					Error:   st.Error,
					Message: st.Messages[class],
					At:      snap.At,
				})
			}
		}
	}

	if w.WithSlices {
		snap.Slices = map[string]json.RawMessage{}
		for name, slice := range w.Store.Snapshot() {
			b, err := json.Marshal(slice)
			if err != nil {
				snap.Error = errors.Wrapf(err, "marshal %s", name).Error()
				continue
			}
			snap.Slices[name] = b
		}
	}
	w.lastLoading = loading

	for _, ev := range settled {
		if err := w.publish(DomainTypeRequestSettled, ev); err != nil {
			return err
		}
	}
	return w.publish(DomainTypeStateSnapshot, snap)
}

func (w *StateWatcher) publish(typ string, v any) error {
	env, err := NewEnvelope(typ, v)
	if err != nil {
		return err
	}
	b, err := env.MarshalJSONBytes()
	if err != nil {
		return err
	}
	return w.Pub.Publish(TopicState, message.NewMessage(watermill.NewUUID(), b))
}
