// Package supervise runs the long-lived loops of a client session (the effect
// runtime, the state watcher, the terminal UI) as one unit: the first loop
// to fail stops the others, and shutdown is bounded by a timeout.
package supervise

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	ShutdownTimeout time.Duration
	Logger          zerolog.Logger
}

type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Supervisor struct {
	opts  Options
	tasks []Task

	mu      sync.Mutex
	running map[string]bool
}

func New(opts Options) *Supervisor {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 3 * time.Second
	}
	return &Supervisor{opts: opts, running: map[string]bool{}}
}

func (s *Supervisor) Add(name string, run func(ctx context.Context) error) {
	s.tasks = append(s.tasks, Task{Name: name, Run: run})
}

// Running lists the tasks that have not returned yet.
func (s *Supervisor) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.running))
	for name := range s.running {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Run blocks until ctx is done or a task fails. A task returning nil simply
// leaves the group. The returned error is the first task failure, or a
// timeout error when tasks outlive ShutdownTimeout after cancellation.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.tasks) == 0 {
		return errors.New("no tasks")
	}
	seen := map[string]bool{}
	for _, t := range s.tasks {
		if t.Name == "" || t.Run == nil {
			return errors.Errorf("invalid task %q", t.Name)
		}
		if seen[t.Name] {
			return errors.Errorf("duplicate task %q", t.Name)
		}
		seen[t.Name] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range s.tasks {
		t := t
		s.setRunning(t.Name, true)
		g.Go(func() error {
			defer s.setRunning(t.Name, false)
			s.opts.Logger.Debug().Str("task", t.Name).Msg("task started")
			err := s.runTask(gctx, t)
			if err != nil {
				s.opts.Logger.Error().Err(err).Str("task", t.Name).Msg("task failed")
				return err
			}
			s.opts.Logger.Debug().Str("task", t.Name).Msg("task stopped")
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}

	timer := time.NewTimer(s.opts.ShutdownTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return errors.Errorf("shutdown timed out after %s, still running: %s",
			s.opts.ShutdownTimeout, strings.Join(s.Running(), ", "))
	}
}

func (s *Supervisor) runTask(ctx context.Context, t Task) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Errorf("task %s panicked: %s", t.Name, fmt.Sprint(v))
		}
	}()
	if err := t.Run(ctx); err != nil {
		return errors.Wrapf(err, "task %s", t.Name)
	}
	return nil
}

func (s *Supervisor) setRunning(name string, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v {
		s.running[name] = true
	} else {
		delete(s.running, name)
	}
}
