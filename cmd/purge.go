package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"imsforecast.app/config"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/storage"
)

var flagPurgeDryRun bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete archive snapshots older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.NewVerbose(flagVerbose)

		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		store := storage.NewStore(&cfg.Storage, log)
		deleted, err := store.Purge(time.Now(), flagPurgeDryRun)
		if err != nil {
			return err
		}

		log.Info("purge complete", "deleted", deleted, "dry_run", flagPurgeDryRun)
		return nil
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&flagPurgeDryRun, "dry-run", false, "only report what would be deleted")
}
