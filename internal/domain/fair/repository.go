package fair

import (
	"context"

	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FairRepository defines the interface for fair persistence
type FairRepository interface {
	// FindByIDForTenant finds a fair by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Fair, error)

	// FindAllForTenant finds all fairs for a tenant with filtering.
	// filter.Filters["status"] narrows by FairStatus when present.
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Fair, error)

	// CountForTenant counts fairs for a tenant matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a fair
	Save(ctx context.Context, f *Fair) error

	// SaveWithLock saves with optimistic locking based on the aggregate version
	SaveWithLock(ctx context.Context, f *Fair) error
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant finds a sale by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByPaymentReference finds the sale linked to a gateway transaction reference
	FindByPaymentReference(ctx context.Context, reference string) (*Sale, error)

	// FindByFair finds sales recorded under a fair
	FindByFair(ctx context.Context, tenantID, fairID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// CountByFair counts sales recorded under a fair
	CountByFair(ctx context.Context, tenantID, fairID uuid.UUID) (int64, error)

	// Save creates or updates a sale together with its items
	Save(ctx context.Context, s *Sale) error

	// SaveWithLock saves with optimistic locking based on the aggregate version
	SaveWithLock(ctx context.Context, s *Sale) error
}
