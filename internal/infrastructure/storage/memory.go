package storage

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alfred/backend/internal/domain/integration"
)

// DefaultMemoryLimit caps the bytes a MemoryStorage retains
const DefaultMemoryLimit int64 = 64 << 20

var _ integration.ObjectStorage = (*MemoryStorage)(nil)

type memoryObject struct {
	key  string
	body []byte
}

// MemoryStorage keeps objects in process memory. It is used when no bucket
// is configured and in tests. Once the byte limit is reached the oldest
// objects are evicted; an object larger than the limit is not retained.
type MemoryStorage struct {
	mu      sync.Mutex
	limit   int64
	size    int64
	order   *list.List
	objects map[string]*list.Element
	BaseURL string
}

// NewMemoryStorage creates an empty store holding at most limit bytes.
// A limit <= 0 selects DefaultMemoryLimit.
func NewMemoryStorage(limit int64) *MemoryStorage {
	if limit <= 0 {
		limit = DefaultMemoryLimit
	}
	return &MemoryStorage{
		limit:   limit,
		order:   list.New(),
		objects: make(map[string]*list.Element),
		BaseURL: "memory://bundles",
	}
}

// Put stores a copy of body
func (s *MemoryStorage) Put(_ context.Context, key string, body []byte, _ string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(key)
	n := int64(len(body))
	if n > s.limit {
		return nil
	}
	for s.size+n > s.limit {
		s.remove(s.order.Front().Value.(*memoryObject).key)
	}
	obj := &memoryObject{key: key, body: append([]byte(nil), body...)}
	s.objects[key] = s.order.PushBack(obj)
	s.size += n
	return nil
}

// PresignGet returns a pseudo URL for key
func (s *MemoryStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	return s.BaseURL + "/" + key, nil
}

// Get returns the stored object
func (s *MemoryStorage) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return el.Value.(*memoryObject).body, true
}

// Keys returns the number of stored objects
func (s *MemoryStorage) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

// Size returns the retained bytes
func (s *MemoryStorage) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *MemoryStorage) remove(key string) {
	el, ok := s.objects[key]
	if !ok {
		return
	}
	s.order.Remove(el)
	delete(s.objects, key)
	s.size -= int64(len(el.Value.(*memoryObject).body))
}
