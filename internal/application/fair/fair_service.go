package fair

import (
	"context"
	"time"

	"github.com/feria/backend/internal/domain/fair"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// summaryBatchSize is how many sales Summary pages through at a time
const summaryBatchSize = 200

// FairService manages the lifecycle of fairs
type FairService struct {
	fairRepo fair.FairRepository
	saleRepo fair.SaleRepository
	logger   *zap.Logger
}

// NewFairService creates a new fair service
func NewFairService(fairRepo fair.FairRepository, saleRepo fair.SaleRepository, logger *zap.Logger) *FairService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FairService{
		fairRepo: fairRepo,
		saleRepo: saleRepo,
		logger:   logger,
	}
}

// CreateFairInput holds the data for creating a fair
type CreateFairInput struct {
	Name     string
	Location string
	SellerID uuid.UUID
	StartsAt time.Time
	EndsAt   time.Time
}

// CreateFair creates a new fair for the tenant
func (s *FairService) CreateFair(ctx context.Context, tenantID uuid.UUID, input CreateFairInput) (*fair.Fair, error) {
	f, err := fair.NewFair(tenantID, input.SellerID, input.Name, input.Location, input.StartsAt, input.EndsAt)
	if err != nil {
		return nil, err
	}

	if err := s.fairRepo.Save(ctx, f); err != nil {
		s.logger.Error("Failed to save fair",
			zap.String("tenant_id", tenantID.String()),
			zap.String("name", input.Name),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Fair created",
		zap.String("fair_id", f.ID.String()),
		zap.String("name", f.Name))

	return f, nil
}

// ListFairsInput holds filtering options for listing fairs
type ListFairsInput struct {
	Page     int
	PageSize int
	Search   string
	Status   string // "open", "closed" or empty for all
}

// ListFairs returns the tenant's fairs with pagination
func (s *FairService) ListFairs(ctx context.Context, tenantID uuid.UUID, input ListFairsInput) (*shared.Paginated[fair.Fair], error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize < 1 {
		input.PageSize = 20
	}

	filter := shared.DefaultFilter()
	filter.Page = input.Page
	filter.PageSize = input.PageSize
	filter.Search = input.Search
	if input.Status != "" {
		status := fair.FairStatus(input.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", "Unknown fair status filter")
		}
		filter.Filters["status"] = status
	}

	fairs, err := s.fairRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.fairRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(fairs, total, input.Page, input.PageSize)
	return &result, nil
}

// GetFair returns one fair by ID
func (s *FairService) GetFair(ctx context.Context, tenantID, fairID uuid.UUID) (*fair.Fair, error) {
	return s.fairRepo.FindByIDForTenant(ctx, tenantID, fairID)
}

// CloseFair closes a fair; closing is terminal
func (s *FairService) CloseFair(ctx context.Context, tenantID, fairID uuid.UUID) (*fair.Fair, error) {
	f, err := s.fairRepo.FindByIDForTenant(ctx, tenantID, fairID)
	if err != nil {
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, err
	}

	if err := s.fairRepo.SaveWithLock(ctx, f); err != nil {
		return nil, err
	}

	s.logger.Info("Fair closed",
		zap.String("fair_id", f.ID.String()),
		zap.String("name", f.Name))

	return f, nil
}

// Summary aggregates the sales recorded under a fair
type Summary struct {
	FairID          uuid.UUID                  `json:"fair_id"`
	SaleCount       int64                      `json:"sale_count"`
	UnitsSold       int                        `json:"units_sold"`
	Revenue         decimal.Decimal            `json:"revenue"`
	Currency        string                     `json:"currency"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
}

// FairSummary computes sale count, units sold and revenue per payment
// method for one fair
func (s *FairService) FairSummary(ctx context.Context, tenantID, fairID uuid.UUID) (*Summary, error) {
	f, err := s.fairRepo.FindByIDForTenant(ctx, tenantID, fairID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		FairID:          f.ID,
		Revenue:         decimal.Zero,
		ByPaymentMethod: make(map[string]decimal.Decimal),
	}

	filter := shared.DefaultFilter()
	filter.PageSize = summaryBatchSize
	for page := 1; ; page++ {
		filter.Page = page
		sales, err := s.saleRepo.FindByFair(ctx, tenantID, fairID, filter)
		if err != nil {
			return nil, err
		}
		for i := range sales {
			sale := &sales[i]
			summary.SaleCount++
			summary.UnitsSold += sale.UnitCount()
			summary.Revenue = summary.Revenue.Add(sale.Total)
			if summary.Currency == "" {
				summary.Currency = sale.Currency
			}

			method := string(sale.PaymentMethod)
			current, ok := summary.ByPaymentMethod[method]
			if !ok {
				current = decimal.Zero
			}
			summary.ByPaymentMethod[method] = current.Add(sale.Total)
		}
		if len(sales) < summaryBatchSize {
			break
		}
	}

	return summary, nil
}
