package cache

import (
	"context"
	"sync"
	"time"

	"github.com/signbridge/backend/internal/application/workflow"
)

// entry represents a cached URL with expiration
type entry struct {
	url       string
	expiresAt time.Time
}

// InMemoryAssetURLCache implements AssetURLCache using an in-memory map.
// This is suitable for single-instance deployments and testing.
type InMemoryAssetURLCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryAssetURLCache creates a new in-memory asset URL cache.
// It starts a background goroutine that drops expired entries every interval.
func NewInMemoryAssetURLCache(interval time.Duration) *InMemoryAssetURLCache {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	c := &InMemoryAssetURLCache{
		entries:  make(map[string]entry),
		interval: interval,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns the cached URL for assetID
func (c *InMemoryAssetURLCache) Get(ctx context.Context, assetID string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[assetID]
	if !exists || time.Now().After(e.expiresAt) {
		return "", false, nil
	}
	return e.url, true, nil
}

// Set stores url for assetID for ttl
func (c *InMemoryAssetURLCache) Set(ctx context.Context, assetID, url string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[assetID] = entry{
		url:       url,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Close stops the cleanup goroutine.
// Safe to call multiple times.
func (c *InMemoryAssetURLCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryAssetURLCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryAssetURLCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryAssetURLCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryAssetURLCache implements AssetURLCache
var _ workflow.AssetURLCache = (*InMemoryAssetURLCache)(nil)
