package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "arbsweep version %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", BuildDate)
		},
	}
}
