package cmd

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/internal/seed"
	"github.com/dealmungchi/fuaas/logger"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generates seed.sql from quotes.json and the captured images.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := quotes.ReadFile(cfg.QuotesFile)
		if err != nil {
			return err
		}
		imageIDs, err := seed.ScanImageIDs(cfg.ImageDir)
		if err != nil {
			return err
		}

		report, err := seed.BuildFile(cfg.SeedFile, doc.Quotes, imageIDs, time.Now())
		if err != nil {
			return err
		}

		logger.ForSeed().Info().
			Int("images_found", report.ImagesFound).
			Int("total_quotes", report.TotalQuotes).
			Int("quotes_with_image", report.QuotesWithImage).
			Str("path", cfg.SeedFile).
			Msg("Seed script written")

		color.Green("✓ Wrote %s: %d quotes, %d with image (%d images found)\n",
			cfg.SeedFile, report.TotalQuotes, report.QuotesWithImage, report.ImagesFound)
		return nil
	},
}
