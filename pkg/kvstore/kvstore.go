// Package kvstore defines the key-value persistence capability used by the
// cart and order ledger.
package kvstore

import (
	"context"
	"errors"
)

// Store persists raw values under string keys.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ErrNotFound indicates the requested key does not exist.
var ErrNotFound = errors.New("key not found")
