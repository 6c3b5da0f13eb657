package cache

import (
	"sync"
	"time"

	"github.com/signbridge/backend/internal/application/workflow"
	"go.uber.org/zap"
)

// InMemorySessionStore implements SessionStore with a map.
// Sessions idle for longer than the idle timeout are evicted by a background sweep.
type InMemorySessionStore struct {
	mu          sync.RWMutex
	sessions    map[string]*workflow.Session
	idleTimeout time.Duration
	interval    time.Duration
	now         func() time.Time
	logger      *zap.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// SessionStoreOption is a functional option for configuring the store
type SessionStoreOption func(*InMemorySessionStore)

// WithSessionClock overrides time.Now
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		s.now = now
	}
}

// WithSessionLogger sets the logger reporting evictions
func WithSessionLogger(logger *zap.Logger) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		s.logger = logger
	}
}

// NewInMemorySessionStore creates a session store and starts its sweep
func NewInMemorySessionStore(idleTimeout, interval time.Duration, opts ...SessionStoreOption) *InMemorySessionStore {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s := &InMemorySessionStore{
		sessions:    make(map[string]*workflow.Session),
		idleTimeout: idleTimeout,
		interval:    interval,
		now:         time.Now,
		logger:      zap.NewNop(),
		stopChan:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

// Save stores a session
func (s *InMemorySessionStore) Save(sess *workflow.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

// Get returns a session and marks it active
func (s *InMemorySessionStore) Get(id string) (*workflow.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sess.Touch(s.now())
	return sess, true
}

// Delete removes a session
func (s *InMemorySessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the sweep.
// Safe to call multiple times.
func (s *InMemorySessionStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemorySessionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

// evictIdle removes sessions idle for longer than the idle timeout
func (s *InMemorySessionStore) evictIdle() int {
	cutoff := s.now().Add(-s.idleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("evicted idle sessions", zap.Int("count", evicted), zap.Int("remaining", len(s.sessions)))
	}
	return evicted
}

// Ensure InMemorySessionStore implements SessionStore
var _ workflow.SessionStore = (*InMemorySessionStore)(nil)
