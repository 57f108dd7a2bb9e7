package tui

import (
	"encoding/json"
	"time"

	"github.com/go-go-golems/pickem/pkg/store"
)

// ActionEntry is one dispatched action as seen by the log.
type ActionEntry struct {
	Type    string          `json:"type"`
	Domain  string          `json:"domain,omitempty"`
	Version uint64          `json:"version"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type DomainStatus struct {
	Name   string       `json:"name"`
	Status store.Status `json:"status"`
}

// StateSnapshot is the polled view of the whole store.
type StateSnapshot struct {
	At      time.Time                  `json:"at"`
	Version uint64                     `json:"version"`
	Domains []DomainStatus             `json:"domains"`
	Slices  map[string]json.RawMessage `json:"slices,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// Find returns the status of one domain.
func (s StateSnapshot) Find(name string) (DomainStatus, bool) {
	for _, d := range s.Domains {
		if d.Name == name {
			return d, true
		}
	}
	return DomainStatus{}, false
}

// RequestSettled is emitted when an operation class stops loading.
type RequestSettled struct {
	Domain  string    `json:"domain"`
	Class   string    `json:"class"`
	Error   string    `json:"error,omitempty"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at"`
}
