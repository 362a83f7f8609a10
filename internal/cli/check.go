package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(src *source) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate a group once and print its health document",
		Long: "Evaluate a group once and print its health document.\n" +
			"Exits with 2 when the group maps to a non-2xx HTTP code.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			cfg, err := src.load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := a.close(ctx); err == nil {
					err = cerr
				}
			}()

			resp, err := a.endpoint.Health(ctx, group)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(resp.Body, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if resp.Status < 200 || resp.Status > 299 {
				if group == "" {
					group = a.endpoint.DefaultGroup()
				}
				return fmt.Errorf("%w: group %q answered %d", ErrUnhealthy, group, resp.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "Group to evaluate (default group when empty)")
	return cmd
}
