package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeUTF8PassesThroughUTF8(t *testing.T) {
	input := []byte("Quote dengan aksen é     https://example.com/a\n")

	out, err := DecodeUTF8(input, "")
	assert.NoError(t, err)
	assert.Equal(t, string(input), string(out))
}

func TestDecodeUTF8StripsBOM(t *testing.T) {
	input := append([]byte("\xef\xbb\xbf"), []byte("quote | https://example.com/a")...)

	out, err := DecodeUTF8(input, "text/plain")
	assert.NoError(t, err)
	assert.Equal(t, "quote | https://example.com/a", string(out))
}

func TestDecodeUTF8MultiByteAfterFirstKilobyte(t *testing.T) {
	prefix := strings.Repeat("plain ascii quote | https://example.com/a\n", 40)
	input := []byte(prefix + "kata “mutiara” 😂 | https://example.com/y\n")
	assert.Greater(t, len(prefix), 1024)

	out, err := DecodeUTF8(input, "")
	assert.NoError(t, err)
	assert.Equal(t, string(input), string(out))
}

func TestDecodeUTF8NonUTF8(t *testing.T) {
	// "café" in ISO-8859-1
	input := []byte{'c', 'a', 'f', 0xe9}

	out, err := DecodeUTF8(input, "text/plain; charset=iso-8859-1")
	assert.NoError(t, err)
	assert.Equal(t, "café", string(out))
}

func TestUserAgents(t *testing.T) {
	assert.Contains(t, DefaultUserAgent(), "Chrome/")
	assert.Contains(t, DefaultUserAgent(), "Macintosh")
}
