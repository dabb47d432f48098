package worker

import (
	"context"
	"sync"
)

// IdempotencyStore remembers which deliveries have been processed.
type IdempotencyStore interface {
	// Has reports whether key was already marked processed.
	Has(ctx context.Context, key string) (bool, error)
	// Set marks key as processed.
	Set(ctx context.Context, key string) error
}

// MemoryStore is an in-process IdempotencyStore. Entries never expire.
type MemoryStore struct {
	mu    sync.Mutex
	store map[string]bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]bool),
	}
}

// Has checks if a key (delivery signature) exists in the store.
func (s *MemoryStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, found := s.store[key]
	return found, nil
}

// Set adds a key (delivery signature) to the store.
func (s *MemoryStore) Set(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[key] = true
	return nil
}

// Len returns the number of stored keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store)
}
