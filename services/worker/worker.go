package worker

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"time"

	"github.com/dealmungchi/fuaas/helpers"
	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

// Capturer captures the screenshot of a single record
type Capturer interface {
	Capture(ctx context.Context, record quotes.Record, path string) error
}

// Stats counts the outcome of a collector run. Processed is Succeeded + Failed; skipped
// records were never attempted.
type Stats struct {
	Processed int
	Succeeded int
	Failed    int
	Skipped   int
}

// Worker handles the sequential screenshot collection
type Worker struct {
	ctx      context.Context
	capturer Capturer
	imageDir string
	failures helpers.FailureRecorder
	delay    time.Duration
	log      *logger.Logger

	// OnRecord, when set, is called after every record with the running totals
	OnRecord func(Stats)
}

// NewWorker creates a new worker
func NewWorker(
	ctx context.Context,
	capturer Capturer,
	imageDir string,
	failures helpers.FailureRecorder,
	delay time.Duration,
) *Worker {
	return &Worker{
		ctx:      ctx,
		capturer: capturer,
		imageDir: imageDir,
		failures: failures,
		delay:    delay,
		log:      logger.ForCollector(),
	}
}

// Run collects the screenshots of records one at a time. Records whose image already exists
// are skipped without touching the network. Every attempted record is followed by the fixed
// delay, whatever its outcome. Cancelling the worker's context stops the run between records.
func (w *Worker) Run(records []quotes.Record) Stats {
	var stats Stats

	for _, record := range records {
		if w.ctx.Err() != nil {
			w.log.Warn().Int("remaining", len(records)-stats.Processed-stats.Skipped).Msg("Collection interrupted")
			break
		}

		path := filepath.Join(w.imageDir, quotes.ImageFileName(record.ID))
		if helpers.FileExists(path) {
			stats.Skipped++
			w.log.Debug().Int64("id", record.ID).Str("path", path).Msg("Image exists, skipping")
			w.notify(stats)
			continue
		}

		w.log.Info().Int64("id", record.ID).Str("url", record.SourceURL).Msg("Capturing")

		if err := w.capturer.Capture(w.ctx, record, path); err != nil {
			stats.Failed++
			event := w.log.Error()
			var pe *errors.PipelineError
			if stderrors.As(err, &pe) && pe.IsRecordFailure() {
				event = w.log.Warn()
			}
			event.Err(err).Int64("id", record.ID).Str("url", record.SourceURL).Msg("Capture failed")
			if w.failures != nil {
				w.failures.LogFailure(record.ID, record.SourceURL, err)
			}
		} else {
			stats.Succeeded++
			w.log.Info().Int64("id", record.ID).Str("path", path).Msg("Captured")
		}
		stats.Processed++
		w.notify(stats)

		// cancellation is picked up at the top of the loop
		_ = helpers.Sleep(w.ctx, w.delay)
	}

	w.log.Info().
		Int("processed", stats.Processed).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Msg("Collection finished")

	return stats
}

func (w *Worker) notify(stats Stats) {
	if w.OnRecord != nil {
		w.OnRecord(stats)
	}
}
