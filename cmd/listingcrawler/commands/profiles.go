package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"ListingCrawler/internal/scanner"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Lists the built-in site profiles and their selectors.",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := scanner.NewRegistry()

		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Base URL", "Header", "Year", "Poster", "Poster attr"})
		for _, name := range registry.Names() {
			p, err := registry.Resolve(name)
			if err != nil {
				return err
			}
			t.AppendRow(table.Row{p.Name, p.BaseURL, p.HeaderSelector, p.YearSelector, p.PosterSelector, p.PosterAttr})
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return err
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}
