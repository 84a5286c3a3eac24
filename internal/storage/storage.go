package storage

import (
	"context"
	"errors"
)

// Store is a string-keyed byte store. Consumers define what the bytes
// mean; implementations only move them.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrKeyNotFound = errors.New("key not found")
