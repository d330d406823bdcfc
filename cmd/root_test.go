package cmd

import (
	"io"
	"testing"

	"github.com/schollz/progressbar/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealmungchi/fuaas/config"
	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/pkg/errors"
	"github.com/dealmungchi/fuaas/services/worker"
)

func TestParseCount(t *testing.T) {
	v, err := parseCount(nil, 0, "limit", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	v, err = parseCount([]string{"10", "250"}, 1, "start-id", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), v)

	_, err = parseCount([]string{"ten"}, 0, "limit", 0)
	assert.Error(t, err)

	_, err = parseCount([]string{"-1"}, 0, "limit", 0)
	assert.Error(t, err)
}

func TestSources(t *testing.T) {
	srcs, err := sources([]config.RawFile{
		{Name: "list.txt", Format: "space"},
		{Name: "list-2.txt", Format: "pipe"},
	})
	require.NoError(t, err)
	assert.Equal(t, []quotes.Source{
		{Name: "list.txt", Format: quotes.FormatSpace},
		{Name: "list-2.txt", Format: quotes.FormatPipe},
	}, srcs)

	_, err = sources([]config.RawFile{{Name: "x.txt", Format: "csv"}})
	assert.Equal(t, errors.ErrorTypeConfiguration, errors.TypeOf(err))
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"parse", "collect", "seed", "migrate", "images", "serve"} {
		assert.True(t, names[name], name)
	}
}

func TestTrackProgressCountsSkippedRecords(t *testing.T) {
	bar := progressbar.NewOptions(5, progressbar.OptionSetWriter(io.Discard))
	onRecord := trackProgress(bar)

	onRecord(worker.Stats{Skipped: 1})
	assert.Equal(t, int64(1), bar.State().CurrentNum)

	onRecord(worker.Stats{Processed: 3, Succeeded: 2, Failed: 1, Skipped: 1})
	assert.Equal(t, int64(4), bar.State().CurrentNum)
}
