package cart

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// lockStripes is the number of mutexes the per-fair locks are spread over
const lockStripes = 64

// Service owns all mutations of cart state. A striped mutex keyed by
// fair ID serializes writers per fair, so operations on one fair never
// block or interleave with another fair's.
type Service struct {
	store  cart.Store
	logger *zap.Logger
	locks  [lockStripes]sync.Mutex
}

// NewService creates a new cart service
func NewService(store cart.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Ensure lazily initializes cart state for a fair. No-op when present.
func (s *Service) Ensure(ctx context.Context, fairID uuid.UUID) error {
	lock := s.lockFor(fairID)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.store.Load(ctx, fairID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return s.store.Save(ctx, fairID, cart.NewState())
}

// Get returns a snapshot of the fair's cart state. A fair without saved
// state yields a fresh default state.
func (s *Service) Get(ctx context.Context, fairID uuid.UUID) (*cart.State, error) {
	lock := s.lockFor(fairID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.load(ctx, fairID)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// SetQuantity stores the clamped quantity for a product in the fair's cart
func (s *Service) SetQuantity(ctx context.Context, fairID, productID uuid.UUID, value float64) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.SetQuantity(productID, value)
	})
}

// Increment raises a product's quantity by one
func (s *Service) Increment(ctx context.Context, fairID, productID uuid.UUID) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.Increment(productID)
	})
}

// Decrement lowers a product's quantity by one, clamping at zero
func (s *Service) Decrement(ctx context.Context, fairID, productID uuid.UUID) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.Decrement(productID)
	})
}

// SetPaymentMethod replaces the fair's payment method
func (s *Service) SetPaymentMethod(ctx context.Context, fairID uuid.UUID, method cart.PaymentMethod) (*cart.State, error) {
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.PaymentMethod = method
	})
}

// SetCustomerName replaces the fair's customer name
func (s *Service) SetCustomerName(ctx context.Context, fairID uuid.UUID, name string) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.CustomerName = name
	})
}

// SetCustomerContact replaces the fair's customer contact
func (s *Service) SetCustomerContact(ctx context.Context, fairID uuid.UUID, contact string) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.CustomerContact = contact
	})
}

// Clear resets quantities and metadata for one fair; other fairs are untouched
func (s *Service) Clear(ctx context.Context, fairID uuid.UUID) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.Reset()
	})
}

// ClearQuantities empties the quantities after a successful sale while
// preserving payment method and customer metadata
func (s *Service) ClearQuantities(ctx context.Context, fairID uuid.UUID) (*cart.State, error) {
	return s.mutate(ctx, fairID, func(state *cart.State) {
		state.ResetQuantities()
	})
}

func (s *Service) mutate(ctx context.Context, fairID uuid.UUID, fn func(*cart.State)) (*cart.State, error) {
	lock := s.lockFor(fairID)
	lock.Lock()
	defer lock.Unlock()

	state, err := s.load(ctx, fairID)
	if err != nil {
		return nil, err
	}

	fn(state)

	if err := s.store.Save(ctx, fairID, state); err != nil {
		s.logger.Error("Failed to persist cart state",
			zap.String("fair_id", fairID.String()),
			zap.Error(err))
		return nil, err
	}

	return state.Clone(), nil
}

func (s *Service) load(ctx context.Context, fairID uuid.UUID) (*cart.State, error) {
	state, err := s.store.Load(ctx, fairID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return cart.NewState(), nil
		}
		return nil, err
	}
	return state, nil
}

func (s *Service) lockFor(fairID uuid.UUID) *sync.Mutex {
	h := fnv.New32a()
	h.Write(fairID[:])
	return &s.locks[h.Sum32()%lockStripes]
}
