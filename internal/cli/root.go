// Package cli implements the healthd command line.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/config"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// ErrUnhealthy is returned by check when the group does not answer 2xx.
var ErrUnhealthy = errors.New("unhealthy")

// ExitCode maps a command error to a process exit code: 2 for an unhealthy
// check, 1 for anything else.
func ExitCode(err error) int {
	if errors.Is(err, ErrUnhealthy) {
		return 2
	}
	return 1
}

// NewRootCmd returns the healthd command tree.
func NewRootCmd() *cobra.Command {
	src := &source{}

	root := &cobra.Command{
		Use:           "healthd",
		Short:         "Health check endpoint server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&src.path, "config", "c", "", "YAML configuration file (defaults apply when empty)")

	root.AddCommand(newServeCmd(src))
	root.AddCommand(newCheckCmd(src))
	root.AddCommand(newValidateCmd(src))
	root.AddCommand(newVersionCmd())
	return root
}

// source is where the configuration comes from, set by --config.
type source struct {
	path string
}

func (s *source) load() (*config.Config, error) {
	if s.path == "" {
		return config.Parse(nil)
	}
	return config.Load(s.path)
}

func newValidateCmd(src *source) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := src.load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d group(s), default %q\n", len(cfg.Groups), cfg.DefaultGroup)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "healthd", Version)
		},
	}
}
