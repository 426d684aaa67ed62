package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	count     int64
	expiresAt time.Time
}

// InMemoryStore implements Store using a map. State is not shared between
// processes, so it only suits single-instance deployments and tests.
type InMemoryStore struct {
	mu        sync.Mutex
	entries   map[string]entry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryStore creates an in-memory store and starts its cleanup loop
func NewInMemoryStore() *InMemoryStore {
	s := &InMemoryStore{
		entries:  make(map[string]entry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

// Get returns the value for key or ErrMiss
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || !s.now().Before(e.expiresAt) {
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value with a TTL
func (s *InMemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes key
func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Incr increments a fixed-window counter
func (s *InMemoryStore) Incr(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = entry{expiresAt: now.Add(window)}
	}
	e.count++
	s.entries[key] = e
	return e.count, e.expiresAt.Sub(now), nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}

// Size returns the number of entries, expired ones included until cleanup
func (s *InMemoryStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ Store = (*InMemoryStore)(nil)
