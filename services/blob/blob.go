package blob

import (
	"context"
	"errors"

	"github.com/dealmungchi/fuaas/internal/quotes"
)

// ErrNotFound is returned when no image is stored under a key
var ErrNotFound = errors.New("blob not found")

// Store represents a key/value store for screenshot bytes
type Store interface {
	// Get retrieves the image of a record
	Get(ctx context.Context, id int64) ([]byte, error)

	// Put stores the image of a record
	Put(ctx context.Context, id int64, data []byte) error

	// Close closes the store connection
	Close() error
}

// Key is the blob key of the image of id
func Key(prefix string, id int64) string {
	return prefix + quotes.ImageFileName(id)
}
