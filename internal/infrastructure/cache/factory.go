package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoreFactory creates the Redis-backed stores, falling back to the
// in-memory implementations when Redis is unavailable
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory stores when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisIdempotencyStore creates a Redis-based idempotency store
func (f *StoreFactory) CreateRedisIdempotencyStore() (shared.IdempotencyStore, error) {
	store, err := NewRedisIdempotencyStore(f.toRedisConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis idempotency store: %w", err)
	}
	return store, nil
}

// CreateInMemoryIdempotencyStore creates an in-memory idempotency store
// This is suitable for single-instance deployments and testing
// WARNING: In-memory stores do not share state across process instances,
// which can lead to duplicate callback processing in distributed deployments
func (f *StoreFactory) CreateInMemoryIdempotencyStore() shared.IdempotencyStore {
	return NewInMemoryIdempotencyStore()
}

// CreateIdempotencyStore creates an idempotency store based on whether Redis is available
// It tries Redis first, and falls back to in-memory if Redis is not available
// and the fallback is allowed
func (f *StoreFactory) CreateIdempotencyStore() (shared.IdempotencyStore, error) {
	store, err := f.CreateRedisIdempotencyStore()
	if err == nil {
		f.logger.Info("using Redis idempotency store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for idempotency but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store. "+
		"This may cause duplicate callback processing in distributed deployments.",
		zap.Error(err),
	)
	return f.CreateInMemoryIdempotencyStore(), nil
}

// CreateCartStore creates a cart store based on whether Redis is available.
// Redis keeps cart state shared between instances; the in-memory fallback
// is only safe for a single instance.
func (f *StoreFactory) CreateCartStore() (cart.Store, error) {
	client, err := f.connect()
	if err == nil {
		f.logger.Info("using Redis cart store")
		return NewRedisCartStore(client, ""), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for cart state but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory cart store. "+
		"Cart state will not survive restarts or be shared between instances.",
		zap.Error(err),
	)
	return NewInMemoryCartStore(), nil
}

// connect opens and pings a Redis client with the factory's configuration
func (f *StoreFactory) connect() (*redis.Client, error) {
	cfg := f.toRedisConfig()
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (f *StoreFactory) toRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}
}
