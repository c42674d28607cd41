package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"imsforecast.app/config"
	"imsforecast.app/pkg/errors"
	"imsforecast.app/pkg/logger"
	"imsforecast.app/workflow"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagDryRun     bool
	flagDate       string
	flagNoFallback bool
	flagVerbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "imsforecast",
	Short: "Daily weather forecast image mailer",
	Long: "imsforecast downloads the IMS city forecast feed, extracts per-city data\n" +
		"for a target date, renders a forecast image and delivers it by email.",
	SilenceUsage: true,
	RunE:         runWorkflow,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "simulate the run without writing files or sending email")
	rootCmd.Flags().StringVar(&flagDate, "date", "", "target date in YYYY-MM-DD format (default: today)")
	rootCmd.Flags().BoolVar(&flagNoFallback, "no-fallback", false, "don't fall back to archive snapshots when the current one is unusable")

	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("imsforecast %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	if flagDate != "" {
		if _, err := time.Parse("2006-01-02", flagDate); err != nil {
			return errors.NewValidationError("--date must be in YYYY-MM-DD format")
		}
	}

	log := logger.NewVerbose(flagVerbose)

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	return workflow.New(cfg, log).Run(workflow.Options{
		DryRun:     flagDryRun,
		TargetDate: flagDate,
		NoFallback: flagNoFallback,
	})
}

// Execute runs the CLI; any failed mandatory step exits non-zero
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersionInfo records build metadata for the version subcommand
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
