package blob

import (
	"context"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"

	pipelineerrors "github.com/dealmungchi/fuaas/pkg/errors"
)

// MemcacheStore implements Store using memcache. Items never expire but may be evicted,
// and the server rejects values above its item size limit (1MB by default).
type MemcacheStore struct {
	client    *memcache.Client
	keyPrefix string
}

// NewMemcacheStore creates a new memcache blob store
func NewMemcacheStore(serverAddr, keyPrefix string) *MemcacheStore {
	return &MemcacheStore{
		client:    memcache.New(serverAddr),
		keyPrefix: keyPrefix,
	}
}

// Ping checks that every memcache server is reachable
func (s *MemcacheStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(); err != nil {
		return pipelineerrors.NewBlob("memcache", "server unreachable", err)
	}
	return nil
}

// Get retrieves the image of a record
func (s *MemcacheStore) Get(ctx context.Context, id int64) ([]byte, error) {
	item, err := s.client.Get(Key(s.keyPrefix, id))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pipelineerrors.NewBlob(Key(s.keyPrefix, id), "failed to get image", err)
	}
	return item.Value, nil
}

// Put stores the image of a record
func (s *MemcacheStore) Put(ctx context.Context, id int64, data []byte) error {
	err := s.client.Set(&memcache.Item{
		Key:   Key(s.keyPrefix, id),
		Value: data,
	})
	if err != nil {
		return pipelineerrors.NewBlob(Key(s.keyPrefix, id), "failed to put image", err)
	}
	return nil
}

// Close is a no-op; the client holds only idle pooled connections
func (s *MemcacheStore) Close() error {
	return nil
}
