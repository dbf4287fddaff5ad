// Package cmd contains the serverwarden CLI commands.
package cmd

import "github.com/spf13/cobra"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "serverwarden",
	Short: "Supervises the lifecycle of a dedicated game server",
	Long: `serverwarden starts a dedicated game server on demand, watches it on a
fixed interval and gracefully stops it after a configured number of
consecutive idle checks.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to the configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
