package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-go-golems/pickem/pkg/app"
	"github.com/go-go-golems/pickem/pkg/config"
	"github.com/go-go-golems/pickem/pkg/session"
	"github.com/go-go-golems/pickem/pkg/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pickem",
		Short:         "Client state core for the pick'em backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newActionsCommand(),
		newDispatchCommand(),
		newTUICommand(),
		newScriptCommand(),
	)
	return root
}

// env is everything a subcommand needs once flags are resolved.
type env struct {
	cfg      config.Config
	logger   zerolog.Logger
	provider *session.Provider
	app      *app.App
	closeLog func()
}

// setup builds the app. When logToFile is set, logs go to the session
// directory instead of stderr so they do not tear the terminal UI.
func setup(cmd *cobra.Command, logToFile bool) (*env, error) {
	cfg, err := config.Resolve(cmd.Flags())
	if err != nil {
		return nil, err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	closeLog := func() {}
	if logToFile {
		path := filepath.Join(cfg.SessionDir, session.DirName, "pickem.log")
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.Wrap(err, "mkdir log dir")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		out = f
		closeLog = func() { _ = f.Close() }
	}
	logger := zerolog.New(out).Level(lvl).With().Timestamp().Logger()

	provider, err := session.NewProvider(cfg.SessionDir, logger)
	if err != nil {
		closeLog()
		return nil, err
	}

	client := transport.NewClient(cfg.BaseURL,
		transport.WithTokenSource(provider),
		transport.WithTimeout(cfg.Timeout),
		transport.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		transport.WithLogger(logger),
	)

	a, err := app.New(client, app.Options{Logger: logger, ShutdownTimeout: cfg.ShutdownTimeout})
	if err != nil {
		closeLog()
		return nil, err
	}
	provider.Restore(a.Store)
	provider.Sync(a.Store)

	return &env{cfg: cfg, logger: logger, provider: provider, app: a, closeLog: closeLog}, nil
}

// background runs the app until the returned stop func is called.
func (e *env) background(ctx context.Context) (stop func() error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- e.app.Run(ctx) }()
	return func() error {
		cancel()
		return <-done
	}
}
