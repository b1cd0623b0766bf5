// Package cli implements the autoroute command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Execute runs the autoroute CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "autoroute",
		Short:         "Mount route modules by directory layout and document them as OpenAPI",
		Long:          "autoroute discovers route modules under a routes directory, mounts each one at the path mirroring its file, and generates an OpenAPI document from the mounted routes.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flagErr := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagErr)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log every loaded route module")

	for _, sub := range []*cobra.Command{newGenerateCmd(), newServeCmd()} {
		sub.SetFlagErrorFunc(flagErr)
		cmd.AddCommand(sub)
	}

	return cmd
}
