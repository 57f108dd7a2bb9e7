package effects

import (
	"sync"

	"github.com/go-go-golems/pickem/pkg/action"
)

// latest tracks one generation per trigger type. Only the invocation holding
// the current generation may deliver its result; after failAll nothing may.
type latest struct {
	mu    sync.Mutex
	gens  map[action.Type]uint64
	live  map[action.Type]int
	fatal error
}

func newLatest() *latest {
	return &latest{
		gens: map[action.Type]uint64{},
		live: map[action.Type]int{},
	}
}

func (l *latest) bump(t action.Type) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gens[t]++
	l.live[t]++
	return l.gens[t]
}

func (l *latest) current(t action.Type, gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fatal != nil {
		return false
	}
	return l.gens[t] == gen
}

func (l *latest) settle(t action.Type) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live[t] > 0 {
		l.live[t]--
	}
	if l.live[t] == 0 {
		delete(l.live, t)
	}
}

// inflight counts invocations that have not returned, superseded ones included.
func (l *latest) inflight(t action.Type) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.live[t]
}

func (l *latest) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.live {
		n += c
	}
	return n
}

func (l *latest) failAll(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fatal == nil {
		l.fatal = err
	}
}

func (l *latest) err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fatal
}
