package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/jouleflux/jouleflux/internal/cli/tui"
)

var (
	refreshInterval time.Duration
	bucketScale     float64
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Launch the live dashboard",
	Long: `Launch an interactive terminal dashboard showing power draw, idle
baselines, the bucket gauge, and recent receipts.

Examples:
  jouleflux watch                  # Basic launch with default settings
  jouleflux watch --refresh 500ms  # Faster refresh rate
  jouleflux watch --bucket-max 500 # Wider bucket gauge`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&refreshInterval, "refresh", time.Second, "dashboard refresh interval")
	watchCmd.Flags().Float64Var(&bucketScale, "bucket-max", 200, "full-scale of the bucket gauge in joules")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	config := tui.Config{
		AgentURL:        GetAgentURL(),
		RefreshInterval: refreshInterval,
		BucketScale:     bucketScale,
		User:            user,
		Password:        password,
	}

	return tui.Run(config)
}
