package cli

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/thushan/llamadeck/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build information",
		Args:  cobra.NoArgs,
		// version needs neither config nor logger
		PersistentPreRun:  func(*cobra.Command, []string) {},
		PersistentPostRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			version.PrintVersionInfo(true, log.New(cmd.OutOrStdout(), "", 0))
		},
	}
}
