package memory

import (
	"context"
	"sync"

	"budgetbook/internal/storage"
)

// Store is an in-process BlobStore. Saved bytes are copied in and out.
type Store struct {
	mu    sync.Mutex
	blobs map[string][]byte
	saves int
	// FailSave, when set, is returned by every Save.
	FailSave error
}

func New() *Store {
	return &Store{blobs: map[string][]byte{}}
}

// NewWith returns a store preloaded with data under key.
func NewWith(key string, data []byte) *Store {
	s := New()
	s.blobs[key] = append([]byte(nil), data...)
	return s
}

func (s *Store) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) Save(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailSave != nil {
		return s.FailSave
	}
	s.blobs[key] = append([]byte(nil), data...)
	s.saves++
	return nil
}

// Saves counts successful Save calls.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
