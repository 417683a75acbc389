package commands

import (
	"github.com/spf13/cobra"

	"ListingCrawler/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-crawls the configured targets on the scheduler interval until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(cmd.Context(), cfg, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Watch(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
