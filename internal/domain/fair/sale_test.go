package fair

import (
	"testing"

	"github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(amount, valueobject.PEN)
	require.NoError(t, err)
	return m
}

func TestNewSale(t *testing.T) {
	tenantID := uuid.New()
	fairID := uuid.New()

	t.Run("cash sale completes immediately", func(t *testing.T) {
		s, err := NewSale(tenantID, fairID, cart.PaymentCash, "Maria", "999888777")
		require.NoError(t, err)

		assert.Equal(t, SaleStatusCompleted, s.Status)
		assert.Equal(t, "PEN", s.Currency)
		assert.Len(t, s.GetDomainEvents(), 1)
	})

	t.Run("card sale waits for the gateway", func(t *testing.T) {
		s, err := NewSale(tenantID, fairID, cart.PaymentCardCredit, "", "")
		require.NoError(t, err)

		assert.Equal(t, SaleStatusPendingPayment, s.Status)
	})

	t.Run("rejects unknown payment method", func(t *testing.T) {
		_, err := NewSale(tenantID, fairID, cart.PaymentMethod("iou"), "", "")
		assert.Error(t, err)
	})

	t.Run("rejects nil fair", func(t *testing.T) {
		_, err := NewSale(tenantID, uuid.Nil, cart.PaymentCash, "", "")
		assert.Error(t, err)
	})
}

func TestSale_AddItem(t *testing.T) {
	s, err := NewSale(uuid.New(), uuid.New(), cart.PaymentCash, "", "")
	require.NoError(t, err)

	productA := uuid.New()
	productB := uuid.New()

	_, err = s.AddItem(productA, "Alfajores", 3, mustMoney(t, "5.50"))
	require.NoError(t, err)
	_, err = s.AddItem(productB, "Chicha morada", 2, mustMoney(t, "4.00"))
	require.NoError(t, err)

	assert.True(t, s.Total.Equal(decimal.RequireFromString("24.50")))
	assert.Equal(t, 5, s.UnitCount())

	t.Run("rejects duplicate product", func(t *testing.T) {
		_, err := s.AddItem(productA, "Alfajores", 1, mustMoney(t, "5.50"))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := s.AddItem(uuid.New(), "Keke", 0, mustMoney(t, "1.00"))
		assert.Error(t, err)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		m, err := valueobject.NewMoneyFromString("-1.00", valueobject.PEN)
		require.NoError(t, err)
		_, err = s.AddItem(uuid.New(), "Keke", 1, m)
		assert.Error(t, err)
	})
}

func TestSale_MarkPaid(t *testing.T) {
	t.Run("pending card sale transitions to paid", func(t *testing.T) {
		s, err := NewSale(uuid.New(), uuid.New(), cart.PaymentCardDebit, "", "")
		require.NoError(t, err)
		s.SetPaymentReference("REF-001")
		s.ClearDomainEvents()

		require.NoError(t, s.MarkPaid())
		assert.Equal(t, SaleStatusPaid, s.Status)
		assert.NotNil(t, s.PaidAt)
		assert.Len(t, s.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeSalePaid, s.GetDomainEvents()[0].EventType())
	})

	t.Run("marking paid twice fails", func(t *testing.T) {
		s, err := NewSale(uuid.New(), uuid.New(), cart.PaymentCardDebit, "", "")
		require.NoError(t, err)
		require.NoError(t, s.MarkPaid())

		assert.Error(t, s.MarkPaid())
	})

	t.Run("completed cash sale cannot be marked paid", func(t *testing.T) {
		s, err := NewSale(uuid.New(), uuid.New(), cart.PaymentCash, "", "")
		require.NoError(t, err)

		assert.Error(t, s.MarkPaid())
	})
}
