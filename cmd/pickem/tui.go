package main

import (
	"github.com/go-go-golems/pickem/pkg/tui/runner"
	"github.com/spf13/cobra"
)

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Inspect the store live: domains, dispatched actions and slice state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer e.closeLog()

			return runner.Run(cmd.Context(), e.app, runner.Options{
				Interval: e.cfg.PollInterval,
				Logger:   e.logger,
			})
		},
	}
}
