package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/serverwarden/serverwarden/config"
	"github.com/serverwarden/serverwarden/internal/app"
	"github.com/serverwarden/serverwarden/pkg/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the supervisor daemon",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.NewConfig()
		if err := cfg.Load(cfgPath); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := logger.New(cfg.LogLevel)

		application, err := app.NewApp(cfg, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return application.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
