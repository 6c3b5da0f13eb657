// Package storage provides blob storage for temporary preview files.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrBlobNotFound is returned when a key holds no blob
var ErrBlobNotFound = errors.New("storage: blob not found")

// Blob is stored content with its media type
type Blob struct {
	ContentType string
	Data        []byte
}

// BlobStore stores blobs by key and hands out URLs to them
type BlobStore interface {
	// Put stores data under key, replacing any previous blob
	Put(ctx context.Context, key, contentType string, data []byte) error

	// Get returns the blob under key
	Get(ctx context.Context, key string) (*Blob, error)

	// URL returns a URL serving key for at least ttl
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
