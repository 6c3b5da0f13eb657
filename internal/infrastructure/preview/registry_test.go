package preview

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/signbridge/backend/internal/domain/shared"
	"github.com/signbridge/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestRegistry(t *testing.T, clock *fakeClock) (*Registry, *storage.MemoryBlobStore) {
	t.Helper()
	store := storage.NewMemoryBlobStore("/api/v1/previews")
	r := NewRegistry(store, Config{TTL: 5 * time.Minute, SweepInterval: time.Hour, MaxBytes: 16}, WithClock(clock.Now))
	t.Cleanup(func() { _ = r.Close() })
	return r, store
}

func TestRegistry_RegisterOpenRevoke(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	r, store := newTestRegistry(t, clock)
	ctx := context.Background()

	h, err := r.Register(ctx, "contrato.pdf", "", []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", h.ContentType)
	assert.Equal(t, "/api/v1/previews/"+h.ID, h.URL)
	assert.Equal(t, clock.Now().Add(5*time.Minute), h.ExpiresAt)
	assert.Equal(t, 1, store.Len())

	blob, err := r.Open(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), blob.Data)
	assert.Equal(t, "contrato.pdf", blob.Handle.Name)

	require.NoError(t, r.Revoke(ctx, h.ID))
	require.NoError(t, r.Revoke(ctx, h.ID))
	assert.Equal(t, 0, store.Len())

	_, err = r.Open(ctx, h.ID)
	assert.ErrorIs(t, err, ErrHandleNotFound)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
}

func TestRegistry_RejectsLargeContent(t *testing.T) {
	r, _ := newTestRegistry(t, &fakeClock{now: time.Now()})
	_, err := r.Register(context.Background(), "big.pdf", "application/pdf", make([]byte, 17))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestRegistry_ExpiryAndSweep(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_000, 0)}
	r, store := newTestRegistry(t, clock)
	ctx := context.Background()

	old, err := r.Register(ctx, "old.pdf", "", []byte("a"))
	require.NoError(t, err)
	clock.Advance(3 * time.Minute)
	fresh, err := r.Register(ctx, "fresh.pdf", "", []byte("b"))
	require.NoError(t, err)

	info := r.Info()
	require.Equal(t, 2, info.Count)
	assert.Equal(t, old.ID, info.Handles[0].ID, "soonest expiry first")

	clock.Advance(2 * time.Minute)
	_, err = r.Open(ctx, old.ID)
	assert.ErrorIs(t, err, ErrHandleNotFound, "expired handles do not open before the sweep")

	assert.Equal(t, 1, r.sweep(ctx))
	assert.Equal(t, 1, r.Info().Count)
	assert.Equal(t, 1, store.Len())

	_, err = r.Open(ctx, fresh.ID)
	require.NoError(t, err)
}

func TestRegistry_CloseRevokesEverything(t *testing.T) {
	store := storage.NewMemoryBlobStore("/p")
	r := NewRegistry(store, Config{})
	ctx := context.Background()

	for range 3 {
		_, err := r.Register(ctx, "f.pdf", "", []byte("x"))
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, r.Info().Count)

	_, err := r.Register(ctx, "late.pdf", "", []byte("x"))
	assert.ErrorIs(t, err, ErrClosed)
}

// closingStore closes the registry while a Register is between its
// closed check and the handle insert
type closingStore struct {
	*storage.MemoryBlobStore
	registry *Registry
}

func (s *closingStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if err := s.MemoryBlobStore.Put(ctx, key, contentType, data); err != nil {
		return err
	}
	return s.registry.Close()
}

func TestRegistry_CloseDuringRegisterLeavesNoBlob(t *testing.T) {
	store := &closingStore{MemoryBlobStore: storage.NewMemoryBlobStore("/p")}
	r := NewRegistry(store, Config{})
	store.registry = r

	h, err := r.Register(context.Background(), "f.pdf", "", []byte("x"))

	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 0, r.Info().Count)
}

func TestRegistry_BackgroundSweep(t *testing.T) {
	store := storage.NewMemoryBlobStore("/p")
	r := NewRegistry(store, Config{TTL: time.Millisecond, SweepInterval: 5 * time.Millisecond})
	defer r.Close()

	_, err := r.Register(context.Background(), "f.pdf", "", []byte("x"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
}
