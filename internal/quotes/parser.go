package quotes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dealmungchi/fuaas/helpers"
	"github.com/dealmungchi/fuaas/logger"
	"github.com/dealmungchi/fuaas/pkg/errors"
)

var (
	urlRegex     = regexp.MustCompile(`https?://\S+`)
	newlineRegex = regexp.MustCompile(`\r?\n`)
)

// ParseLine extracts a quote and url from a single line. ok is false for blank lines and for
// lines without a quote or url.
func ParseLine(format Format, line string) (Entry, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Entry{}, false
	}

	switch format {
	case FormatSpace:
		return parseSpaceLine(trimmed)
	case FormatPipe:
		return parsePipeLine(trimmed)
	default:
		return Entry{}, false
	}
}

func parseSpaceLine(line string) (Entry, bool) {
	loc := urlRegex.FindStringIndex(line)
	if loc == nil {
		return Entry{}, false
	}

	quote := strings.TrimSpace(line[:loc[0]])
	if quote == "" {
		return Entry{}, false
	}

	return Entry{Quote: quote, SourceURL: line[loc[0]:loc[1]]}, true
}

func parsePipeLine(line string) (Entry, bool) {
	parts := strings.Split(line, "|")
	if len(parts) < 2 {
		return Entry{}, false
	}

	quote := strings.TrimSpace(parts[0])
	url := strings.TrimSpace(strings.Join(parts[1:], "|"))
	if quote == "" || url == "" {
		return Entry{}, false
	}

	return Entry{Quote: quote, SourceURL: url}, true
}

// ParseText parses every line of text in order
func ParseText(format Format, text string) []Entry {
	var entries []Entry
	for _, line := range newlineRegex.Split(text, -1) {
		if entry, ok := ParseLine(format, line); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// ParseFile reads a raw listing from dir. A file that cannot be read is an input error.
func ParseFile(dir string, source Source) ([]Entry, error) {
	path := filepath.Join(dir, source.Name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInput(source.Name, "failed to read raw listing", err)
	}

	text, err := helpers.DecodeUTF8(data, "text/plain")
	if err != nil {
		return nil, errors.NewInput(source.Name, "failed to decode raw listing", err)
	}

	return ParseText(source.Format, string(text)), nil
}

// Generate parses sources in order and assigns ids starting at 1 across all of them.
// Any unreadable file aborts the whole run.
func Generate(dir string, sources []Source, now time.Time) (*Document, error) {
	log := logger.ForParser()

	records := make([]Record, 0)
	currentID := int64(1)

	for _, source := range sources {
		log.Info().Str("file", source.Name).Str("format", string(source.Format)).Msg("Processing raw listing")

		entries, err := ParseFile(dir, source)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			records = append(records, Record{
				ID:        currentID,
				Quote:     entry.Quote,
				SourceURL: entry.SourceURL,
			})
			currentID++
		}

		log.Info().Str("file", source.Name).Int("quotes", len(entries)).Msg("Parsed raw listing")
	}

	return &Document{
		TotalQuotes: len(records),
		GeneratedAt: FormatTimestamp(now),
		Quotes:      records,
	}, nil
}

// Marshal renders the document as indented JSON without HTML escaping
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode quotes document: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to path
func (d *Document) WriteFile(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a quotes document
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInput(path, "failed to read quotes document", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewInput(path, "malformed quotes document", err)
	}
	return &doc, nil
}
