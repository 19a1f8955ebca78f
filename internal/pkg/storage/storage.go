package storage

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrObjectNotFound is returned by Get when nothing is stored under the key.
	ErrObjectNotFound = errors.New("storage: object not found")
	// ErrInvalidKey rejects keys that are empty or escape the storage root.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Storage is a flat blob store addressed by slash-separated keys.
type Storage interface {
	// Save writes content under key, replacing anything already there.
	Save(ctx context.Context, key string, content io.Reader) error

	// Get opens the object stored under key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
