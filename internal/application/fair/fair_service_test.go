package fair

import (
	"context"
	"testing"
	"time"

	domaincart "github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/fair"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFairService_CreateFair(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("creates and saves fair", func(t *testing.T) {
		fairRepo := new(MockFairRepository)
		fairRepo.On("Save", mock.Anything, mock.AnythingOfType("*fair.Fair")).Return(nil)

		svc := NewFairService(fairRepo, new(MockSaleRepository), nil)
		f, err := svc.CreateFair(ctx, tenantID, CreateFairInput{
			Name:     "Feria Central",
			Location: "Lima",
			SellerID: uuid.New(),
			StartsAt: time.Now(),
			EndsAt:   time.Now().Add(8 * time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, tenantID, f.TenantID)
		assert.Equal(t, fair.FairStatusOpen, f.Status)
		fairRepo.AssertExpectations(t)
	})

	t.Run("invalid input is rejected before saving", func(t *testing.T) {
		fairRepo := new(MockFairRepository)
		svc := NewFairService(fairRepo, new(MockSaleRepository), nil)

		_, err := svc.CreateFair(ctx, tenantID, CreateFairInput{Name: "", SellerID: uuid.New()})
		assert.Error(t, err)
		fairRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestFairService_ListFairs(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("applies default pagination", func(t *testing.T) {
		fairRepo := new(MockFairRepository)
		fairRepo.On("FindAllForTenant", mock.Anything, tenantID, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20
		})).Return([]fair.Fair{}, nil)
		fairRepo.On("CountForTenant", mock.Anything, tenantID, mock.Anything).Return(int64(0), nil)

		svc := NewFairService(fairRepo, new(MockSaleRepository), nil)
		result, err := svc.ListFairs(ctx, tenantID, ListFairsInput{})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, 20, result.PageSize)
		fairRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown status filter", func(t *testing.T) {
		svc := NewFairService(new(MockFairRepository), new(MockSaleRepository), nil)
		_, err := svc.ListFairs(ctx, tenantID, ListFairsInput{Status: "paused"})
		assert.Error(t, err)
	})
}

func TestFairService_CloseFair(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	f, err := fair.NewFair(tenantID, uuid.New(), "Feria", "Lima", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	fairRepo := new(MockFairRepository)
	fairRepo.On("FindByIDForTenant", mock.Anything, tenantID, f.ID).Return(f, nil)
	fairRepo.On("SaveWithLock", mock.Anything, f).Return(nil)

	svc := NewFairService(fairRepo, new(MockSaleRepository), nil)
	closed, err := svc.CloseFair(ctx, tenantID, f.ID)
	require.NoError(t, err)

	assert.Equal(t, fair.FairStatusClosed, closed.Status)
	fairRepo.AssertExpectations(t)

	// second close fails in the domain, no second save
	_, err = svc.CloseFair(ctx, tenantID, f.ID)
	assert.Error(t, err)
}

func TestFairService_FairSummary(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	f, err := fair.NewFair(tenantID, uuid.New(), "Feria", "Lima", time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)

	makeSale := func(method domaincart.PaymentMethod, qty int, amount string) fair.Sale {
		s, err := fair.NewSale(tenantID, f.ID, method, "", "")
		require.NoError(t, err)
		_, err = s.AddItem(uuid.New(), "Producto", qty, price(t, amount))
		require.NoError(t, err)
		return *s
	}

	sales := []fair.Sale{
		makeSale(domaincart.PaymentCash, 2, "5.00"),
		makeSale(domaincart.PaymentCash, 1, "8.00"),
		makeSale(domaincart.PaymentYape, 3, "2.00"),
	}

	fairRepo := new(MockFairRepository)
	fairRepo.On("FindByIDForTenant", mock.Anything, tenantID, f.ID).Return(f, nil)
	saleRepo := new(MockSaleRepository)
	saleRepo.On("FindByFair", mock.Anything, tenantID, f.ID, mock.Anything).Return(sales, nil)

	svc := NewFairService(fairRepo, saleRepo, nil)
	summary, err := svc.FairSummary(ctx, tenantID, f.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.SaleCount)
	assert.Equal(t, 6, summary.UnitsSold)
	assert.True(t, summary.Revenue.Equal(decimal.RequireFromString("24.00")))
	assert.True(t, summary.ByPaymentMethod["cash"].Equal(decimal.RequireFromString("18.00")))
	assert.True(t, summary.ByPaymentMethod["yape"].Equal(decimal.RequireFromString("6.00")))
	assert.Equal(t, "PEN", summary.Currency)
}
