package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. Used by tests and by the
// "memory" driver for throwaway shells.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, namespace string) ([]byte, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[namespace]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Save(_ context.Context, namespace string, data []byte) error {
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[namespace] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, namespace)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
