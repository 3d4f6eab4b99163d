package cart

import (
	"context"
	"sync"
)

// Storage keeps serialized carts between requests, keyed by the cart
// owner. Load reports whether a cart was found at all.
type Storage interface {
	Load(c context.Context, key string) ([]byte, bool, error)
	Save(c context.Context, key string, value []byte) error
}

// MemoryStorage is the single-process fallback when no cache is
// configured.
type MemoryStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: map[string][]byte{}}
}

func (s *MemoryStorage) Load(c context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	saved, ok := s.carts[key]
	return saved, ok, nil
}

func (s *MemoryStorage) Save(c context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[key] = value
	return nil
}
