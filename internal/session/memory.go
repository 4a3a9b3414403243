package session

import (
	"context"
	"sync"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// MemoryStore implements Store with a process-local map.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*domain.AddressDraft
}

// NewMemoryStore creates an empty in-memory draft store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: make(map[string]*domain.AddressDraft),
	}
}

// Get retrieves the active draft for a user, or nil if none.
func (s *MemoryStore) Get(_ context.Context, userID string) (*domain.AddressDraft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[userID]
	if !ok {
		return nil, nil
	}
	// Copy so callers never mutate the stored draft without a Put.
	cp := *d
	return &cp, nil
}

// Put creates or replaces the active draft for a user.
func (s *MemoryStore) Put(_ context.Context, userID string, draft *domain.AddressDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *draft
	s.drafts[userID] = &cp
	return nil
}

// Delete removes the active draft for a user.
func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, userID)
	return nil
}

// Close releases the map.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts = nil
	return nil
}
