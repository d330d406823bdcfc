package helpers

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var utf8BOM = []byte("\xef\xbb\xbf")

// DefaultUserAgent is the desktop user agent the collector presents to the forum
func DefaultUserAgent() string {
	return defaultUserAgent
}

// DecodeUTF8 converts raw input bytes to UTF-8. Valid UTF-8 is returned as is; anything else is
// decoded using the BOM, the charset parameter of contentType (may be empty) and content
// sniffing, in that order. A leading BOM is dropped.
func DecodeUTF8(data []byte, contentType string) ([]byte, error) {
	// DetermineEncoding only sniffs the first 1024 bytes
	if utf8.Valid(data) {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	encoding, name, _ := charset.DetermineEncoding(data, contentType)

	// If already UTF-8, return as is
	if name == "utf-8" || name == "UTF-8" {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}

	utf8Reader := encoding.NewDecoder().Reader(bytes.NewReader(data))
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, utf8Reader); err != nil {
		return nil, fmt.Errorf("failed to convert %s input to UTF-8: %w", name, err)
	}

	return bytes.TrimPrefix(buf.Bytes(), utf8BOM), nil
}
