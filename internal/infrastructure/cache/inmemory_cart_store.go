package cache

import (
	"context"
	"sync"

	"github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InMemoryCartStore implements cart.Store using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryCartStore struct {
	mu     sync.RWMutex
	states map[uuid.UUID]*cart.State
}

// NewInMemoryCartStore creates a new in-memory cart store
func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		states: make(map[uuid.UUID]*cart.State),
	}
}

// Load returns the saved state for a fair, shared.ErrNotFound when absent
func (s *InMemoryCartStore) Load(ctx context.Context, fairID uuid.UUID) (*cart.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, exists := s.states[fairID]
	if !exists {
		return nil, shared.ErrNotFound
	}
	return state.Clone(), nil
}

// Save stores a copy of the state for a fair
func (s *InMemoryCartStore) Save(ctx context.Context, fairID uuid.UUID, state *cart.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[fairID] = state.Clone()
	return nil
}

// Delete removes the stored state for a fair
func (s *InMemoryCartStore) Delete(ctx context.Context, fairID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, fairID)
	return nil
}

// Ensure InMemoryCartStore implements cart.Store
var _ cart.Store = (*InMemoryCartStore)(nil)
