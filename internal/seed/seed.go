// Package seed turns the quotes document into a SQL script for the quotes table.
package seed

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dealmungchi/fuaas/internal/quotes"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

// Report summarizes a generated seed script
type Report struct {
	ImagesFound     int
	TotalQuotes     int
	QuotesWithImage int
}

// ScanImageIDs returns the ids of every "<id>.png" file in dir
func ScanImageIDs(dir string) (map[int64]struct{}, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewInput(dir, "failed to read image directory", err)
	}

	ids := make(map[int64]struct{})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := quotes.ParseImageFileName(entry.Name()); ok {
			ids[id] = struct{}{}
		}
	}
	return ids, nil
}

// EscapeSQL renders s as a SQL string literal, or NULL for nil
func EscapeSQL(s *string) string {
	if s == nil {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(*s, "'", "''") + "'"
}

// Build writes the seed script for records to w. The output depends only on its inputs;
// generatedAt only appears in the header comment.
func Build(w io.Writer, records []quotes.Record, imageIDs map[int64]struct{}, generatedAt time.Time) (Report, error) {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "-- FUaaS Seed Data\n")
	fmt.Fprintf(bw, "-- Generated: %s\n\n", quotes.FormatTimestamp(generatedAt))
	fmt.Fprintf(bw, "BEGIN TRANSACTION;\n\n")

	report := Report{
		ImagesFound: len(imageIDs),
		TotalQuotes: len(records),
	}

	for _, r := range records {
		hasImage := 0
		if _, ok := imageIDs[r.ID]; ok {
			hasImage = 1
			report.QuotesWithImage++
		}
		quote, url := r.Quote, r.SourceURL
		fmt.Fprintf(bw, "INSERT INTO quotes (id, quote, source_url, has_image) VALUES (%d, %s, %s, %d);\n",
			r.ID, EscapeSQL(&quote), EscapeSQL(&url), hasImage)
	}

	fmt.Fprintf(bw, "\nCOMMIT;\n")

	if err := bw.Flush(); err != nil {
		return Report{}, fmt.Errorf("failed to write seed script: %w", err)
	}
	return report, nil
}

// BuildFile writes the seed script to path
func BuildFile(path string, records []quotes.Record, imageIDs map[int64]struct{}, generatedAt time.Time) (Report, error) {
	f, err := os.Create(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	report, err := Build(f, records, imageIDs, generatedAt)
	if err != nil {
		return Report{}, err
	}
	return report, f.Close()
}
