package cmd

import (
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/dealmungchi/fuaas/services/worker"
)

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("items"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// trackProgress advances bar to the number of records handled so far
func trackProgress(bar *progressbar.ProgressBar) func(worker.Stats) {
	return func(s worker.Stats) {
		bar.Set(s.Processed + s.Skipped)
	}
}
