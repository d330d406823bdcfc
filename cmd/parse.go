package cmd

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/internal/quotes"
)

func init() {
	rootCmd.AddCommand(parseCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parses the raw quote listings into quotes.json.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		srcs, err := sources(cfg.RawFiles)
		if err != nil {
			return err
		}

		doc, err := quotes.Generate(cfg.RawDir, srcs, time.Now())
		if err != nil {
			return err
		}
		if err := doc.WriteFile(cfg.QuotesFile); err != nil {
			return err
		}

		color.Green("✓ Wrote %d quotes to %s\n", doc.TotalQuotes, cfg.QuotesFile)
		return nil
	},
}
