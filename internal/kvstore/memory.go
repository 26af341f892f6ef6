package kvstore

import (
	"context"
	"sync"
)

// MemStore is an in-process Store used in tests and when no Redis address
// is configured.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return nil, ErrNoKey
	}

	out := make([]byte, len(val))
	copy(out, val)

	return out, nil
}

func (s *MemStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	val := make([]byte, len(value))
	copy(val, value)
	s.data[key] = val

	return nil
}

func (s *MemStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}
