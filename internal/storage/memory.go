package storage

import (
	"context"
	"io"
	"sync"
)

// MemStore is an in-memory Store for tests and local development.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte)}
}

// Put stores the bytes and returns a mem:// reference.
func (s *MemStore) Put(_ context.Context, path, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.objects[path] = data
	s.mu.Unlock()

	return "mem://" + path, nil
}

// Get returns stored bytes, for test assertions.
func (s *MemStore) Get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	return data, ok
}
