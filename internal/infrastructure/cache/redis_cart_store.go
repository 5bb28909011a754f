package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCartStore implements cart.Store on Redis so cart state survives
// restarts and is shared between instances. States are stored as JSON
// under one key per fair and never expire; closing a fair removes them.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisCartStore creates a cart store with an existing Redis client
func NewRedisCartStore(client *redis.Client, keyPrefix string) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = "feria:cart:"
	}
	return &RedisCartStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Load returns the saved state for a fair, shared.ErrNotFound when absent
func (s *RedisCartStore) Load(ctx context.Context, fairID uuid.UUID) (*cart.State, error) {
	data, err := s.client.Get(ctx, s.key(fairID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load cart state: %w", err)
	}

	var state cart.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode cart state: %w", err)
	}
	if state.Quantities == nil {
		state.Quantities = make(map[uuid.UUID]int)
	}
	return &state, nil
}

// Save stores the state for a fair
func (s *RedisCartStore) Save(ctx context.Context, fairID uuid.UUID, state *cart.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode cart state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(fairID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save cart state: %w", err)
	}
	return nil
}

// Delete removes the stored state for a fair
func (s *RedisCartStore) Delete(ctx context.Context, fairID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(fairID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart state: %w", err)
	}
	return nil
}

func (s *RedisCartStore) key(fairID uuid.UUID) string {
	return s.keyPrefix + fairID.String()
}

// Ensure RedisCartStore implements cart.Store
var _ cart.Store = (*RedisCartStore)(nil)
