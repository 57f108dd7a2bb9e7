package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-go-golems/pickem/pkg/action"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newDispatchCommand() *cobra.Command {
	var (
		payload string
		wait    bool
		waitFor time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dispatch <type>",
		Short: "Dispatch one action and print the owning slice as YAML",
		Example: `  pickem dispatch auth/loginRequest --payload '{"email":"a@b.c","password":"..."}' --wait
  pickem dispatch group/fetchAllGroupsRequest --wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer e.closeLog()

			t := action.Type(args[0])
			domain, ok := e.app.DomainOf(t)
			if !ok {
				return errors.Errorf("unknown action type %q (see `pickem actions`)", t)
			}
			var raw []byte
			if payload != "" {
				if !json.Valid([]byte(payload)) {
					return errors.New("--payload is not valid JSON")
				}
				raw = []byte(payload)
			}
			a, err := e.app.Decode(t, raw)
			if err != nil {
				return err
			}

			stop := e.background(cmd.Context())
			e.app.Store.Dispatch(a)
			if wait {
				ctx, cancel := context.WithTimeout(cmd.Context(), waitFor)
				err = e.app.WaitIdle(ctx, domain, 0)
				if err == nil {
					err = e.app.WaitSettled(ctx, 0)
				}
				cancel()
			}
			if stopErr := stop(); err == nil {
				err = stopErr
			}
			if err != nil {
				return err
			}

			slice, _ := e.app.Store.Get(domain)
			out, err := toYAML(map[string]any{domain: slice})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "", "JSON payload of the action")
	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the domain is idle and every follow-up call has settled")
	cmd.Flags().DurationVar(&waitFor, "wait-timeout", 30*time.Second, "maximum time to wait")
	return cmd
}

// toYAML renders v through its JSON form so json tags name the keys.
func toYAML(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshal state")
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "reparse state")
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "render yaml")
	}
	return out, nil
}
