package cmd

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealmungchi/fuaas/helpers"
	"github.com/dealmungchi/fuaas/internal/crawler"
	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/services/worker"
)

func init() {
	rootCmd.AddCommand(collectCmd)
}

// parseCount parses an optional positional integer; absent means def
func parseCount(args []string, i int, name string, def int64) (int64, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, args[i])
	}
	return v, nil
}

var collectCmd = &cobra.Command{
	Use:   "collect [limit] [start-id]",
	Short: "Captures a screenshot of the author's post for every quote without one.",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.ForCollector()

		limit, err := parseCount(args, 0, "limit", 0)
		if err != nil {
			return err
		}
		startID, err := parseCount(args, 1, "start-id", 1)
		if err != nil {
			return err
		}

		doc, err := quotes.ReadFile(cfg.QuotesFile)
		if err != nil {
			return err
		}
		records := quotes.Select(doc.Quotes, startID, int(limit))

		log.Info().
			Int("total", doc.TotalQuotes).
			Int("selected", len(records)).
			Int64("start_id", startID).
			Int64("limit", limit).
			Str("image_dir", cfg.ImageDir).
			Msg("Starting collection")

		ctx := cmd.Context()
		browser, err := crawler.NewChromeBrowser(ctx, crawler.ChromeOptions{
			RemoteURL:      cfg.ChromeWSURL,
			ProxyServer:    cfg.ChromeProxy,
			UserAgent:      helpers.DefaultUserAgent(),
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
		})
		if err != nil {
			return err
		}
		defer browser.Close()

		capturer := crawler.NewCapturer(browser, crawler.NewForumLocator(cfg.TargetAuthor), crawler.Timing{
			PageLoad: cfg.PageLoadTimeout,
			PostWait: cfg.PostWaitTimeout,
			Settle:   cfg.SettleDelay,
		})

		w := worker.NewWorker(ctx, capturer, cfg.ImageDir, helpers.NewFailureLog(cfg.FailureLog), cfg.RecordDelay)
		bar := newProgressBar(len(records), "Capturing")
		w.OnRecord = trackProgress(bar)
		stats := w.Run(records)
		bar.Finish()

		fmt.Println()
		color.Cyan("Processed: %d\n", stats.Processed)
		color.Green("Succeeded: %d\n", stats.Succeeded)
		color.Red("Failed:    %d\n", stats.Failed)
		color.Yellow("Skipped:   %d\n", stats.Skipped)
		if stats.Failed > 0 {
			color.Red("Failed records were appended to %s\n", cfg.FailureLog)
		}
		return ctx.Err()
	},
}
