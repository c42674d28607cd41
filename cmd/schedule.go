package cmd

import (
	"github.com/spf13/cobra"
	"imsforecast.app/config"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/scheduler"
	"imsforecast.app/workflow"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the forecast workflow every day at the configured time",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewVerbose(flagVerbose)

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		w := workflow.New(cfg, log)
		return scheduler.New(w, &cfg.Scheduler, log).Start()
	},
}
