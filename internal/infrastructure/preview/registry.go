// Package preview exposes downloaded files under short-lived URLs.
package preview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/signbridge/backend/internal/application/workflow"
	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// Defaults for Registry
const (
	DefaultTTL           = 5 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxBytes      = 25 << 20
)

var (
	ErrHandleNotFound = errors.New("preview: handle not found or expired")
	ErrTooLarge       = errors.New("preview: content exceeds size limit")
	ErrClosed         = errors.New("preview: registry closed")
)

// Config configures a Registry
type Config struct {
	TTL           time.Duration
	SweepInterval time.Duration
	MaxBytes      int64
}

// Registry tracks preview handles over a blob store.
// Handles expire after TTL; a background sweep revokes expired ones and
// Close revokes everything.
type Registry struct {
	store    storage.BlobStore
	ttl      time.Duration
	interval time.Duration
	maxBytes int64
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	handles map[string]workflow.PreviewHandle
	closed  bool

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Option is a functional option for configuring the registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry and starts its sweep
func NewRegistry(store storage.BlobStore, cfg Config, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		ttl:      cfg.TTL,
		interval: cfg.SweepInterval,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
		logger:   zap.NewNop(),
		handles:  make(map[string]workflow.PreviewHandle),
		stopChan: make(chan struct{}),
	}
	if r.ttl <= 0 {
		r.ttl = DefaultTTL
	}
	if r.interval <= 0 {
		r.interval = DefaultSweepInterval
	}
	if r.maxBytes <= 0 {
		r.maxBytes = DefaultMaxBytes
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.sweepLoop()

	return r
}

// Register stores data and returns a handle valid for the registry's TTL
func (r *Registry) Register(ctx context.Context, name, contentType string, data []byte) (*workflow.PreviewHandle, error) {
	if int64(len(data)) > r.maxBytes {
		return nil, shared.WrapDomainError(shared.CodeValidation,
			fmt.Sprintf("file is %d bytes, previews are limited to %d", len(data), r.maxBytes), ErrTooLarge)
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	id := uuid.NewString()
	if err := r.store.Put(ctx, id, contentType, data); err != nil {
		return nil, shared.NewConnectivityError("failed to store preview", err)
	}
	url, err := r.store.URL(ctx, id, r.ttl)
	if err != nil {
		_ = r.store.Delete(ctx, id)
		return nil, shared.NewConnectivityError("failed to publish preview", err)
	}

	h := workflow.PreviewHandle{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        len(data),
		URL:         url,
		ExpiresAt:   r.now().Add(r.ttl),
	}

	r.mu.Lock()
	if r.closed {
		// Close already took its snapshot of handles
		r.mu.Unlock()
		_ = r.store.Delete(ctx, id)
		return nil, ErrClosed
	}
	r.handles[id] = h
	r.mu.Unlock()
	return &h, nil
}

// Open returns a live handle's content
func (r *Registry) Open(ctx context.Context, id string) (*workflow.PreviewBlob, error) {
	r.mu.Lock()
	h, ok := r.handles[id]
	r.mu.Unlock()
	if !ok || !r.now().Before(h.ExpiresAt) {
		return nil, shared.WrapDomainError(shared.CodeNotFound, "preview "+id+" not found", ErrHandleNotFound)
	}

	blob, err := r.store.Get(ctx, id)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, shared.WrapDomainError(shared.CodeNotFound, "preview "+id+" not found", ErrHandleNotFound)
	}
	if err != nil {
		return nil, shared.NewConnectivityError("failed to read preview", err)
	}
	return &workflow.PreviewBlob{Handle: h, Data: blob.Data}, nil
}

// Revoke releases a handle. Unknown handles are ignored.
func (r *Registry) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	_, ok := r.handles[id]
	delete(r.handles, id)
	r.mu.Unlock()
	if !ok {
		return nil
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete preview blob: %w", err)
	}
	return nil
}

// Info lists the live handles, soonest expiry first
func (r *Registry) Info() workflow.PreviewInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	info := workflow.PreviewInfo{Count: len(r.handles)}
	for _, h := range r.handles {
		info.Handles = append(info.Handles, h)
	}
	slices.SortFunc(info.Handles, func(a, b workflow.PreviewHandle) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	return info
}

// Close stops the sweep and revokes every handle.
// Safe to call multiple times.
func (r *Registry) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopChan)
		r.wg.Wait()

		r.mu.Lock()
		r.closed = true
		ids := make([]string, 0, len(r.handles))
		for id := range r.handles {
			ids = append(ids, id)
		}
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var errs []error
		for _, id := range ids {
			errs = append(errs, r.Revoke(ctx, id))
		}
		err = errors.Join(errs...)
	})
	return err
}

func (r *Registry) sweepLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.sweep(context.Background())
		}
	}
}

// sweep revokes expired handles and returns how many it revoked
func (r *Registry) sweep(ctx context.Context) int {
	now := r.now()

	r.mu.Lock()
	var expired []string
	for id, h := range r.handles {
		if !now.Before(h.ExpiresAt) {
			expired = append(expired, id)
		}
	}
	r.mu.Unlock()

	for _, id := range expired {
		if err := r.Revoke(ctx, id); err != nil {
			r.logger.Warn("failed to revoke expired preview", zap.String("handle", id), zap.Error(err))
		}
	}
	if len(expired) > 0 {
		r.logger.Debug("revoked expired previews", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Ensure Registry implements PreviewRegistry
var _ workflow.PreviewRegistry = (*Registry)(nil)
