// Package redis implements a Redis-backed key-value store.
package redis

import (
	"context"

	goredis "github.com/redis/go-redis/v9"

	"deliveryflow/pkg/kvstore"
)

// Store persists values in Redis.
type Store struct {
	client *goredis.Client
}

// New creates a Redis-backed store using the given client.
func New(client *goredis.Client) *Store {
	return &Store{client: client}
}

// Get returns the value stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, kvstore.ErrNotFound
	}
	return v, err
}

// Set stores value under key with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
