package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MemoryBlobStore keeps blobs in process memory.
// Its URLs point at the API route that serves previews from this process.
type MemoryBlobStore struct {
	// BaseURL prefixes every blob URL, e.g. /api/v1/previews
	BaseURL string

	mu    sync.RWMutex
	blobs map[string]Blob
}

// NewMemoryBlobStore creates a new MemoryBlobStore
func NewMemoryBlobStore(baseURL string) *MemoryBlobStore {
	return &MemoryBlobStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		blobs:   make(map[string]Blob),
	}
}

// Ensure MemoryBlobStore implements BlobStore
var _ BlobStore = (*MemoryBlobStore)(nil)

// Put stores a copy of data under key
func (s *MemoryBlobStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = Blob{ContentType: contentType, Data: buf}
	return nil
}

// Get returns the blob under key
func (s *MemoryBlobStore) Get(ctx context.Context, key string) (*Blob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return &b, nil
}

// URL returns BaseURL/key. The ttl is enforced by the caller.
func (s *MemoryBlobStore) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	return s.BaseURL + "/" + key, nil
}

// Delete removes key
func (s *MemoryBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len returns the number of stored blobs
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
