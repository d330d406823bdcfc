package blob

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	pipelineerrors "github.com/dealmungchi/fuaas/pkg/errors"
)

// RedisStore implements Store using Redis string keys
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore creates a new Redis blob store
func NewRedisStore(addr string, db int, keyPrefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Ping checks that the Redis server is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return pipelineerrors.NewBlob("redis", "server unreachable", err)
	}
	return nil
}

// Get retrieves the image of a record
func (s *RedisStore) Get(ctx context.Context, id int64) ([]byte, error) {
	data, err := s.client.Get(ctx, Key(s.keyPrefix, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, pipelineerrors.NewBlob(Key(s.keyPrefix, id), "failed to get image", err)
	}
	return data, nil
}

// Put stores the image of a record without expiration
func (s *RedisStore) Put(ctx context.Context, id int64, data []byte) error {
	if err := s.client.Set(ctx, Key(s.keyPrefix, id), data, 0).Err(); err != nil {
		return pipelineerrors.NewBlob(Key(s.keyPrefix, id), "failed to put image", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
