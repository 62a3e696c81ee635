// Package store persists published snapshots in an object store.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key holds no object.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the byte-level storage the snapshot store writes through.
// GetObject returns ErrNotFound for a missing key; deleting a missing key is
// not an error.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, body []byte) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	DeleteObject(ctx context.Context, key string) error
}
