package commands

import (
	"github.com/spf13/cobra"

	"ListingCrawler/internal/app"
	"ListingCrawler/internal/config"
	"ListingCrawler/internal/scanner"
)

var crawlFlags struct {
	url     string
	profile string
	pages   int
	format  string
	output  string
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--url <start url>] [--pages N] [--format table|csv|markdown|json|lines]",
	Short: "Crawls the configured targets once and prints the listings.",
	RunE: func(cmd *cobra.Command, args []string) error {
		runCfg, err := applyCrawlFlags(cmd, cfg)
		if err != nil {
			return err
		}

		application, err := app.New(cmd.Context(), runCfg, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer application.Close()

		_, err = application.Run(cmd.Context())
		return err
	},
}

func init() {
	f := crawlCmd.Flags()
	f.StringVar(&crawlFlags.url, "url", "", "Start address containing a &page=<n>& segment; replaces the configured targets.")
	f.StringVar(&crawlFlags.profile, "profile", scanner.IMDbKeyword, "Site profile used with --url.")
	f.IntVar(&crawlFlags.pages, "pages", 1, "Number of pages to crawl per target.")
	f.StringVar(&crawlFlags.format, "format", "", "Output format override.")
	f.StringVar(&crawlFlags.output, "output", "", "Write listings to this file instead of stdout.")
	rootCmd.AddCommand(crawlCmd)
}

// applyCrawlFlags returns a copy of base with the explicitly set flags applied.
func applyCrawlFlags(cmd *cobra.Command, base config.Config) (config.Config, error) {
	out := base
	pagesSet := cmd.Flags().Changed("pages")

	if crawlFlags.url != "" {
		out.Targets = []config.TargetConfig{{
			Name:     "cli",
			Profile:  crawlFlags.profile,
			StartURL: crawlFlags.url,
			MaxPages: crawlFlags.pages,
		}}
	} else if pagesSet {
		targets := make([]config.TargetConfig, len(base.Targets))
		copy(targets, base.Targets)
		for i := range targets {
			targets[i].MaxPages = crawlFlags.pages
		}
		out.Targets = targets
	}

	if crawlFlags.format != "" {
		out.Output.Format = crawlFlags.format
	}
	if crawlFlags.output != "" {
		out.Output.Path = crawlFlags.output
	}

	if err := out.Validate(); err != nil {
		return config.Config{}, err
	}
	return out, nil
}
