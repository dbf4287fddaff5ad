package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is injected at build time via -ldflags.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the serverwarden version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "serverwarden", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
