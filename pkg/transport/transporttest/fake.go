// Package transporttest provides a scripted transport.Doer for effect tests.
// Routes answer immediately; held routes park each call until the test
// resolves it, which lets tests choose the completion order of concurrent calls.
package transporttest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-go-golems/pickem/pkg/transport"
)

type Handler func(req transport.Request) (*transport.Response, error)

type result struct {
	resp *transport.Response
	err  error
}

// Call is a held request waiting for Resolve or Reject.
type Call struct {
	Request transport.Request
	done    chan result
	once    sync.Once
}

func (c *Call) Resolve(body string) {
	c.once.Do(func() {
		c.done <- result{resp: &transport.Response{Status: 200, Body: json.RawMessage(body)}}
	})
}

func (c *Call) Reject(err error) {
	c.once.Do(func() {
		c.done <- result{err: err}
	})
}

type Fake struct {
	mu     sync.Mutex
	routes map[string]Handler
	holds  map[string]bool
	held   map[string][]*Call
	calls  []transport.Request
	signal chan struct{}
}

var _ transport.Doer = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		routes: map[string]Handler{},
		holds:  map[string]bool{},
		held:   map[string][]*Call{},
		signal: make(chan struct{}),
	}
}

func key(method, path string) string {
	return method + " " + path
}

func (f *Fake) On(method, path string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key(method, path)] = h
}

// Respond answers with body. Statuses >= 400 become *transport.HTTPError.
func (f *Fake) Respond(method, path string, status int, body string) {
	f.On(method, path, func(req transport.Request) (*transport.Response, error) {
		if status >= 400 {
			he := &transport.HTTPError{Method: method, Path: path, Status: status, Raw: []byte(body)}
			_ = json.Unmarshal([]byte(body), &he.Body)
			return nil, he
		}
		return &transport.Response{Status: status, Body: json.RawMessage(body)}, nil
	})
}

func (f *Fake) Fail(method, path string, err error) {
	f.On(method, path, func(req transport.Request) (*transport.Response, error) {
		return nil, err
	})
}

// Hold parks every later call to method/path until the test settles it.
func (f *Fake) Hold(method, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holds[key(method, path)] = true
}

func (f *Fake) Calls() []transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.Request{}, f.calls...)
}

// CallCount counts recorded calls to method/path.
func (f *Fake) CallCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

// WaitHeld blocks until n calls are parked on method/path or the timeout expires.
func (f *Fake) WaitHeld(method, path string, n int, timeout time.Duration) ([]*Call, bool) {
	deadline := time.After(timeout)
	for {
		f.mu.Lock()
		calls := f.held[key(method, path)]
		sig := f.signal
		if len(calls) >= n {
			out := append([]*Call{}, calls...)
			f.mu.Unlock()
			return out, true
		}
		f.mu.Unlock()

		select {
		case <-sig:
		case <-deadline:
			return nil, false
		}
	}
}

func (f *Fake) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	k := key(req.Method, req.Path)

	f.mu.Lock()
	f.calls = append(f.calls, req)
	if f.holds[k] {
		c := &Call{Request: req, done: make(chan result, 1)}
		f.held[k] = append(f.held[k], c)
		close(f.signal)
		f.signal = make(chan struct{})
		f.mu.Unlock()

		select {
		case r := <-c.done:
			return r.resp, r.err
		case <-ctx.Done():
			return nil, &transport.NetworkError{Method: req.Method, Path: req.Path, Err: ctx.Err()}
		}
	}
	h, ok := f.routes[k]
	f.mu.Unlock()

	if !ok {
		return nil, &transport.HTTPError{Method: req.Method, Path: req.Path, Status: 404}
	}
	return h(req)
}
