package quotes

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Record is one quote with its source post and sequential id
type Record struct {
	ID               int64            `json:"id"`
	Quote            string           `json:"quote"`
	SourceURL        string           `json:"source_url"`
	SemanticAnalysis *json.RawMessage `json:"semantic_analysis"`
	Image            *json.RawMessage `json:"image"`
}

// Document is the quotes.json artifact
type Document struct {
	TotalQuotes int      `json:"total_quotes"`
	GeneratedAt string   `json:"generated_at"`
	Quotes      []Record `json:"quotes"`
}

// Entry is a parsed line before an id is assigned
type Entry struct {
	Quote     string
	SourceURL string
}

// Format is the line format of a raw listing
type Format string

const (
	// FormatSpace is "quote<whitespace padding>url"
	FormatSpace Format = "space"
	// FormatPipe is "quote | url", where the url may itself contain "|"
	FormatPipe Format = "pipe"
)

// Source is a raw listing file and its line format
type Source struct {
	Name   string
	Format Format
}

// TimestampLayout matches the millisecond ISO-8601 form used in the generated artifacts
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC with TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatSpace, FormatPipe:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unknown line format %q", name)
	}
}

var imageFileRegex = regexp.MustCompile(`^(\d+)\.png$`)

// ImageFileName is the file name and blob key of the screenshot for id
func ImageFileName(id int64) string {
	return strconv.FormatInt(id, 10) + ".png"
}

// ParseImageFileName extracts the record id from a screenshot file name
func ParseImageFileName(name string) (int64, bool) {
	m := imageFileRegex.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Select keeps the records with id >= startID and then the first limit of them.
// A limit <= 0 keeps all of them.
func Select(records []Record, startID int64, limit int) []Record {
	var selected []Record
	for _, r := range records {
		if r.ID >= startID {
			selected = append(selected, r)
		}
	}
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}
