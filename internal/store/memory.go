package store

import (
	"context"
	"sync"
)

// InMemoryObjectStore keeps objects in process memory. Safe for concurrent use.
type InMemoryObjectStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewInMemoryObjectStore() *InMemoryObjectStore {
	return &InMemoryObjectStore{objects: make(map[string][]byte)}
}

func (s *InMemoryObjectStore) PutObject(_ context.Context, key string, body []byte) error {
	data := make([]byte, len(body))
	copy(data, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *InMemoryObjectStore) GetObject(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *InMemoryObjectStore) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}
