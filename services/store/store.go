package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	pipelineerrors "github.com/dealmungchi/fuaas/pkg/errors"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("not found")

// Schema is the quotes table the seed script populates
const Schema = `CREATE TABLE IF NOT EXISTS quotes (
	id INTEGER PRIMARY KEY,
	quote TEXT NOT NULL,
	source_url TEXT NOT NULL,
	has_image INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_quotes_has_image ON quotes (has_image);`

// Quote is a row of the quotes table
type Quote struct {
	ID        int64
	Quote     string
	SourceURL string
	HasImage  bool
}

// Store is the relational store holding the quotes table
type Store struct {
	db *sql.DB
}

// Open opens the store with the given driver: "sqlite" for a local file (or ":memory:")
// or "libsql" for a hosted database URL.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "sqlite":
		return openSQLite(dsn)
	case "libsql":
		db, err := sql.Open("libsql", dsn)
		if err != nil {
			return nil, pipelineerrors.NewStore(driver, "failed to open database", err)
		}
		return New(db), nil
	default:
		return nil, pipelineerrors.NewConfiguration(fmt.Sprintf("unsupported store driver: %s", driver), nil)
	}
}

func openSQLite(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, pipelineerrors.NewStore(path, "failed to create database directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pipelineerrors.NewStore(path, "failed to open database", err)
	}

	// a single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, pipelineerrors.NewStore(path, "failed to enable WAL", err)
		}
	}

	return New(db), nil
}

// New wraps an open database
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate creates the quotes table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return pipelineerrors.NewStore("quotes", "failed to create schema", err)
	}
	return nil
}

// ApplySeed executes a seed script in a single transaction. With replace set, existing rows are
// removed in that same transaction so the script's fixed ids do not collide and a failing script
// leaves the previous rows in place.
func (s *Store) ApplySeed(ctx context.Context, script string, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return pipelineerrors.NewStore("quotes", "failed to begin transaction", err)
	}
	defer tx.Rollback()

	if replace {
		if _, err := tx.ExecContext(ctx, "DELETE FROM quotes"); err != nil {
			return pipelineerrors.NewStore("quotes", "failed to clear table", err)
		}
	}
	if _, err := tx.ExecContext(ctx, stripTransaction(script)); err != nil {
		return pipelineerrors.NewStore("quotes", "failed to apply seed script", err)
	}
	if err := tx.Commit(); err != nil {
		return pipelineerrors.NewStore("quotes", "failed to commit seed script", err)
	}
	return nil
}

// stripTransaction drops the script's own BEGIN/COMMIT lines; ApplySeed supplies the transaction
func stripTransaction(script string) string {
	lines := strings.Split(script, "\n")
	kept := lines[:0]
	for _, line := range lines {
		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "BEGIN;", "BEGIN TRANSACTION;", "COMMIT;", "END;", "END TRANSACTION;":
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// CountQuotes returns the number of rows in the quotes table
func (s *Store) CountQuotes(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quotes").Scan(&count); err != nil {
		return 0, pipelineerrors.NewStore("quotes", "failed to count quotes", err)
	}
	return count, nil
}

// QuoteByID returns the quote with the given id, or ErrNotFound
func (s *Store) QuoteByID(ctx context.Context, id int64) (*Quote, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, quote, source_url, has_image FROM quotes WHERE id = ?", id)

	var q Quote
	var hasImage int64
	if err := row.Scan(&q.ID, &q.Quote, &q.SourceURL, &hasImage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, pipelineerrors.NewStore("quotes", fmt.Sprintf("failed to load quote %d", id), err)
	}
	q.HasImage = hasImage == 1
	return &q, nil
}

// HasImage reports whether the quote exists and is flagged as having an image
func (s *Store) HasImage(ctx context.Context, id int64) (bool, error) {
	var hasImage int64
	err := s.db.QueryRowContext(ctx, "SELECT has_image FROM quotes WHERE id = ?", id).Scan(&hasImage)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, pipelineerrors.NewStore("quotes", fmt.Sprintf("failed to check image flag of %d", id), err)
	}
	return hasImage == 1, nil
}

// RandomImageID picks a random id among quotes with an image, or ErrNotFound when there are none
func (s *Store) RandomImageID(ctx context.Context) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM quotes WHERE has_image = 1 ORDER BY RANDOM() LIMIT 1").Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, pipelineerrors.NewStore("quotes", "failed to pick a random image", err)
	}
	return id, nil
}
