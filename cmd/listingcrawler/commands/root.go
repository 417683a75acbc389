package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"ListingCrawler/internal/config"
	"ListingCrawler/internal/logging"
)

var (
	configPath string

	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "listingcrawler",
	Short:         "listingcrawler collects catalog listings from paginated listing pages.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		logger, logCloser = logging.FromConfig(cfg.Logging)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML config (defaults to $LISTING_CRAWLER_CONFIG).")
}

// ExecuteContext runs the CLI and exits non-zero on failure.
func ExecuteContext(ctx context.Context) {
	if err := execute(ctx, nil); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree with args (nil means os.Args), logs a
// failure and closes the log file on every path.
func execute(ctx context.Context, args []string) error {
	defer closeLog()

	if args != nil {
		rootCmd.SetArgs(args)
		defer rootCmd.SetArgs(nil)
	}
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		if logger == nil {
			logger = logging.New("error")
		}
		logger.Error("listingcrawler stopped", "error", err)
	}
	return err
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}
