package main

import (
	"github.com/go-go-golems/pickem/pkg/script"
	"github.com/spf13/cobra"
)

func newScriptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "script <file.js>",
		Short: "Run a JavaScript scenario against the backend",
		Long: `Scripts get dispatch(type, payload), state(domain), status(domain),
waitIdle(domain, ms) and log(...).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			stop := e.background(cmd.Context())
			r := &script.Runner{App: e.app, Out: cmd.OutOrStdout(), Logger: e.logger}
			err = r.RunFile(cmd.Context(), args[0])
			if stopErr := stop(); err == nil {
				err = stopErr
			}
			return err
		},
	}
}
