package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newActionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List every action type the store understands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "REQUEST\tDOMAIN\tOPERATION")
			for _, d := range e.app.Ops() {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", d.Request, d.Domain, d.Name)
			}
			for _, t := range e.app.PlainTypes() {
				domain, _ := e.app.DomainOf(t)
				_, _ = fmt.Fprintf(w, "%s\t%s\t(plain)\n", t, domain)
			}
			return w.Flush()
		},
	}
}
