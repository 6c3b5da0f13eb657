package workflow

import (
	"context"
	"time"
)

// ---------------------------------------------------------------------------
// Session store
// ---------------------------------------------------------------------------

// SessionStore keeps live sessions and evicts idle ones
type SessionStore interface {
	// Save stores s under s.ID()
	Save(s *Session)

	// Get returns the session and marks it active
	Get(id string) (*Session, bool)

	// Delete removes a session. Deleting an unknown id is a no-op.
	Delete(id string)

	// Len returns the number of live sessions
	Len() int
}

// ---------------------------------------------------------------------------
// Asset URL cache
// ---------------------------------------------------------------------------

// AssetURLCache caches resolved asset URLs by asset id.
// Implementations may be process-local or shared between instances.
type AssetURLCache interface {
	// Get returns the cached URL for assetID
	Get(ctx context.Context, assetID string) (string, bool, error)

	// Set stores url for assetID for ttl
	Set(ctx context.Context, assetID, url string, ttl time.Duration) error
}

// ---------------------------------------------------------------------------
// Preview registry
// ---------------------------------------------------------------------------

// PreviewHandle is downloaded content exposed under a temporary URL
type PreviewHandle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PreviewBlob is the content behind a handle
type PreviewBlob struct {
	Handle PreviewHandle
	Data   []byte
}

// PreviewInfo summarizes the registry for diagnostics
type PreviewInfo struct {
	Count   int             `json:"count"`
	Handles []PreviewHandle `json:"handles"`
}

// PreviewRegistry hands out temporary URLs for downloaded files.
// Handles expire after the registry's TTL; a background sweep revokes them.
type PreviewRegistry interface {
	// Register stores data and returns a handle valid until its expiry
	Register(ctx context.Context, name, contentType string, data []byte) (*PreviewHandle, error)

	// Open returns a live handle's content
	Open(ctx context.Context, id string) (*PreviewBlob, error)

	// Revoke releases a handle. Revoking an unknown handle is a no-op.
	Revoke(ctx context.Context, id string) error

	// Info lists the live handles
	Info() PreviewInfo
}
