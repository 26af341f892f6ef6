// Package kvstore is the key-value persistence boundary for the features
// the original frontend kept in browser local storage: comment threads,
// bookmarks, the newsletter subscriber list and the session mirror.
// Values are opaque JSON blobs; writes are atomic per key, nothing spans
// keys.
package kvstore

import (
	"context"
	"errors"
)

// ErrNoKey is returned when a key has never been written.
var ErrNoKey = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
