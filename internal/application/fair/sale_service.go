package fair

import (
	"context"
	"sort"
	"time"

	domaincart "github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/catalog"
	"github.com/feria/backend/internal/domain/fair"
	"github.com/feria/backend/internal/domain/shared"
	logging "github.com/feria/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartAccess is the slice of the cart service the sale flow needs
type CartAccess interface {
	Get(ctx context.Context, fairID uuid.UUID) (*domaincart.State, error)
	ClearQuantities(ctx context.Context, fairID uuid.UUID) (*domaincart.State, error)
}

// ProductSource provides the seller's full catalog
type ProductSource interface {
	LoadAll(ctx context.Context, sellerID uuid.UUID) ([]catalog.Product, error)
}

// SaleService records sales under fairs
type SaleService struct {
	fairRepo fair.FairRepository
	saleRepo fair.SaleRepository
	carts    CartAccess
	products ProductSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(fairRepo fair.FairRepository, saleRepo fair.SaleRepository, carts CartAccess, products ProductSource, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{
		fairRepo: fairRepo,
		saleRepo: saleRepo,
		carts:    carts,
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// log binds the service logger to the request context so entries carry
// the request, tenant and user IDs set by the HTTP middleware.
func (s *SaleService) log(ctx context.Context) *logging.ContextLogger {
	return logging.WithLogger(ctx, s.logger)
}

// SubmitInput carries the per-submission payment details. The gateway
// reference comes from the terminal that initiated the card charge.
type SubmitInput struct {
	PaymentReference string
}

// Submit records one sale from the fair's current cart.
//
// Preconditions are checked before any catalog or repository write: the
// fair must be open, the cart must have at least one positive quantity,
// and card payments must carry the gateway transaction reference so the
// later redirect can be matched back to the sale. A failed submission
// leaves the cart untouched; a successful one clears only the
// quantities, preserving payment method and customer metadata for the
// next sale.
func (s *SaleService) Submit(ctx context.Context, tenantID, fairID uuid.UUID, input SubmitInput) (*fair.Sale, error) {
	f, err := s.fairRepo.FindByIDForTenant(ctx, tenantID, fairID)
	if err != nil {
		return nil, err
	}
	if !f.IsOpenAt(s.now()) {
		return nil, shared.ErrFairNotRunning
	}

	state, err := s.carts.Get(ctx, fairID)
	if err != nil {
		return nil, err
	}
	if !state.HasItems() {
		return nil, shared.ErrEmptyCart
	}

	productList, err := s.products.LoadAll(ctx, f.SellerID)
	if err != nil {
		return nil, err
	}
	bySKU := make(map[uuid.UUID]catalog.Product, len(productList))
	for _, p := range productList {
		bySKU[p.ID] = p
	}

	sale, err := fair.NewSale(tenantID, fairID, state.PaymentMethod, state.CustomerName, state.CustomerContact)
	if err != nil {
		return nil, err
	}

	if sale.Status == fair.SaleStatusPendingPayment {
		if input.PaymentReference == "" {
			return nil, shared.ErrMissingReference
		}
		sale.SetPaymentReference(input.PaymentReference)
	}

	lines := state.Lines()
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.String() < lines[j].ProductID.String()
	})
	for _, line := range lines {
		product, ok := bySKU[line.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product is not in the seller's catalog")
		}
		if !product.Available || product.Stock < line.Quantity {
			return nil, shared.ErrInsufficientStock
		}
		if _, err := sale.AddItem(product.ID, product.Name, line.Quantity, product.Price); err != nil {
			return nil, err
		}
	}

	if err := s.saleRepo.Save(ctx, sale); err != nil {
		s.log(ctx).Error("Failed to save sale",
			zap.String("fair_id", fairID.String()),
			zap.Error(err))
		return nil, err
	}

	// The sale is recorded; a failure clearing the cart must not undo it
	if _, err := s.carts.ClearQuantities(ctx, fairID); err != nil {
		s.log(ctx).Warn("Sale recorded but cart quantities were not cleared",
			zap.String("fair_id", fairID.String()),
			zap.String("sale_id", sale.ID.String()),
			zap.Error(err))
	}

	s.log(ctx).Info("Sale recorded",
		zap.String("sale_id", sale.ID.String()),
		zap.String("fair_id", fairID.String()),
		zap.String("total", sale.Total.String()),
		zap.String("payment_method", string(sale.PaymentMethod)))

	return sale, nil
}

// ListSalesInput holds pagination options for listing sales
type ListSalesInput struct {
	Page     int
	PageSize int
}

// ListSales returns the sales recorded under a fair
func (s *SaleService) ListSales(ctx context.Context, tenantID, fairID uuid.UUID, input ListSalesInput) (*shared.Paginated[fair.Sale], error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize < 1 {
		input.PageSize = 20
	}

	filter := shared.DefaultFilter()
	filter.Page = input.Page
	filter.PageSize = input.PageSize

	sales, err := s.saleRepo.FindByFair(ctx, tenantID, fairID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.saleRepo.CountByFair(ctx, tenantID, fairID)
	if err != nil {
		return nil, err
	}

	result := shared.NewPaginated(sales, total, input.Page, input.PageSize)
	return &result, nil
}
