package store

import (
	"context"
	"path/filepath"
	"testing"

	pipelineerrors "github.com/dealmungchi/fuaas/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `-- FUaaS Seed Data
-- Generated: 2024-09-01T00:00:00.000Z

BEGIN TRANSACTION;

INSERT INTO quotes (id, quote, source_url, has_image) VALUES (1, 'first', 'https://example.com/1', 0);
INSERT INTO quotes (id, quote, source_url, has_image) VALUES (2, 'it''s second', 'https://example.com/2', 1);
INSERT INTO quotes (id, quote, source_url, has_image) VALUES (3, 'third', 'https://example.com/3', 1);

COMMIT;
`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestApplySeedAndLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.ApplySeed(ctx, testSeed, false))

	count, err := s.CountQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	q, err := s.QuoteByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, &Quote{ID: 2, Quote: "it's second", SourceURL: "https://example.com/2", HasImage: true}, q)

	_, err = s.QuoteByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)

	has, err := s.HasImage(ctx, 1)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = s.HasImage(ctx, 3)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasImage(ctx, 42)
	require.NoError(t, err)
	assert.False(t, has)

	for i := 0; i < 20; i++ {
		id, err := s.RandomImageID(ctx)
		require.NoError(t, err)
		assert.Contains(t, []int64{2, 3}, id)
	}
}

func TestApplySeedTwice(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.ApplySeed(ctx, testSeed, false))

	err := s.ApplySeed(ctx, testSeed, false)
	assert.Equal(t, pipelineerrors.ErrorTypeStore, pipelineerrors.TypeOf(err))

	require.NoError(t, s.ApplySeed(ctx, testSeed, true))
	count, err := s.CountQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestApplySeedFailedReplaceKeepsRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.ApplySeed(ctx, testSeed, false))

	broken := `BEGIN TRANSACTION;
INSERT INTO quotes (id, quote, source_url, has_image) VALUES (10, 'new', 'https://example.com/10', 0);
INSERT INTO quotes (id, quote, source_url, has_image) VALUES (11, NULL, 'https://example.com/11', 0);
COMMIT;`
	err := s.ApplySeed(ctx, broken, true)
	assert.Equal(t, pipelineerrors.ErrorTypeStore, pipelineerrors.TypeOf(err))

	count, err := s.CountQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	_, err = s.QuoteByID(ctx, 10)
	assert.ErrorIs(t, err, ErrNotFound)

	// the store stays usable after the rollback
	require.NoError(t, s.ApplySeed(ctx, testSeed, true))
}

func TestStripTransaction(t *testing.T) {
	out := stripTransaction("-- header\nBEGIN TRANSACTION;\nINSERT INTO quotes VALUES (1);\n  commit;\n")
	assert.Equal(t, "-- header\nINSERT INTO quotes VALUES (1);\n", out)
}

func TestRandomImageIDEmpty(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RandomImageID(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := s.CountQuotes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "fuaas.db")
	s, err := Open("sqlite", path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate(context.Background()))
	assert.FileExists(t, path)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "dsn")
	assert.Equal(t, pipelineerrors.ErrorTypeConfiguration, pipelineerrors.TypeOf(err))
}
