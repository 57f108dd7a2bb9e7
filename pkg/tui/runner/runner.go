// Package runner starts the state inspector over a running app: the action
// logger and state watcher publish on an in-process bus, and a forwarder
// relays the bus into the bubbletea program.
package runner

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/pickem/pkg/app"
	"github.com/go-go-golems/pickem/pkg/supervise"
	"github.com/go-go-golems/pickem/pkg/tui"
	"github.com/go-go-golems/pickem/pkg/tui/models"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Options struct {
	Interval time.Duration
	Logger   zerolog.Logger
	// Program overrides the tea options, e.g. input/output in tests.
	Program []tea.ProgramOption
}

func Run(ctx context.Context, a *app.App, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := tui.NewBus(opts.Logger)
	defer func() { _ = bus.Close() }()

	logger := &tui.ActionLogger{Pub: bus, DomainOf: a.DomainOf, Logger: opts.Logger}
	defer logger.Attach(a.Store)()

	watcher := &tui.StateWatcher{Store: a.Store, Interval: opts.Interval, Pub: bus, WithSlices: true}

	root := models.NewRootModel(models.RootOptions{
		Dispatch: a.Store.Dispatch,
		ClearFor: a.ClearMessages,
	})
	popts := opts.Program
	if popts == nil {
		popts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	popts = append(popts, tea.WithContext(ctx))
	p := tea.NewProgram(root, popts...)

	return a.Run(ctx,
		supervise.Task{Name: "state-watcher", Run: watcher.Run},
		supervise.Task{Name: "bus-forwarder", Run: func(ctx context.Context) error {
			return tui.Forward(ctx, bus, p.Send, opts.Logger)
		}},
		supervise.Task{Name: "ui", Run: func(ctx context.Context) error {
			// quitting the UI ends the session, and a failing sibling ends the UI
			defer cancel()
			stop := context.AfterFunc(ctx, cancel)
			defer stop()
			_, err := p.Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		}},
	)
}
