package store

import (
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store used in tests in place of DirStore.
type MemStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string][]byte)}
}

func (s *MemStore) Put(data []byte) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = append([]byte(nil), data...)
	return id, nil
}

func (s *MemStore) Get(id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[id]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}
