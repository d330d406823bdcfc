package crawler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dealmungchi/fuaas/helpers"
	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

// Timing bounds the steps of a single capture
type Timing struct {
	PageLoad time.Duration
	PostWait time.Duration
	Settle   time.Duration
}

// Capturer turns a record's source page into a cropped screenshot of the target post
type Capturer struct {
	browser Browser
	locator Locator
	timing  Timing
	log     *logger.Logger
}

// NewCapturer creates a capturer driving browser with the rules of locator
func NewCapturer(browser Browser, locator Locator, timing Timing) *Capturer {
	return &Capturer{
		browser: browser,
		locator: locator,
		timing:  timing,
		log:     logger.ForCollector(),
	}
}

// Capture loads the record's page, isolates the post and writes it as PNG to path.
// Errors are PipelineErrors; record-level ones leave no file behind.
func (c *Capturer) Capture(ctx context.Context, record quotes.Record, path string) error {
	url := record.SourceURL

	navCtx, cancel := context.WithTimeout(ctx, c.timing.PageLoad)
	err := c.browser.Navigate(navCtx, url)
	cancel()
	if err != nil {
		return errors.NewNavigation(url, "page did not finish loading", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.timing.PostWait)
	err = c.browser.WaitReady(waitCtx, c.locator.ReadySelector())
	cancel()
	if err != nil {
		return errors.NewDOM(url, "post container did not appear", err)
	}

	var removed int
	if err := c.browser.Evaluate(ctx, c.locator.StripChromeScript(), &removed); err != nil {
		return errors.NewDOM(url, "failed to remove page chrome", err)
	}
	c.log.Debug().Int64("id", record.ID).Int("removed", removed).Msg("Removed page chrome")

	if err := helpers.Sleep(ctx, c.timing.Settle); err != nil {
		return errors.NewNavigation(url, "interrupted while settling", err)
	}

	html, err := c.browser.HTML(ctx)
	if err != nil {
		return errors.NewDOM(url, "failed to read page HTML", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return errors.NewDOM(url, "failed to parse page HTML", err)
	}

	match, err := c.locator.FindPost(doc)
	if err != nil {
		return err
	}
	if !match.ActionBar {
		c.log.Warn().Int64("id", record.ID).Str("url", url).Msg("Action bar not found, capturing untrimmed post")
	}

	var marked bool
	if err := c.browser.Evaluate(ctx, c.locator.TrimPostScript(match.Index), &marked); err != nil {
		return errors.NewDOM(url, "failed to trim post", err)
	}
	if !marked {
		return errors.NewDOM(url, "post disappeared before capture", nil)
	}

	png, err := c.browser.Screenshot(ctx, c.locator.CaptureSelector())
	if err != nil {
		return errors.NewCapture(url, "failed to take screenshot", err)
	}
	if len(png) == 0 {
		return errors.NewCapture(url, "screenshot is empty", nil)
	}

	return writeImage(path, png)
}

// writeImage writes data next to path and renames it into place so a partial file never
// looks like a finished capture
func writeImage(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewCapture(path, "failed to create image directory", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return errors.NewCapture(path, "failed to write image", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.NewCapture(path, "failed to move image into place", err)
	}
	return nil
}
