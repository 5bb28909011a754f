package handler

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/feria/backend/internal/domain/catalog"
	"github.com/feria/backend/internal/domain/shared/valueobject"
)

func TestToProductResponse(t *testing.T) {
	product := catalog.Product{
		ID:        uuid.New(),
		Name:      "Chompa de alpaca",
		Price:     valueobject.NewMoneyPEN(decimal.NewFromFloat(85.50)),
		Stock:     12,
		Available: true,
	}

	resp := toProductResponse(product)

	assert.Equal(t, product.ID, resp.ID)
	assert.Equal(t, "Chompa de alpaca", resp.Name)
	assert.True(t, decimal.NewFromFloat(85.50).Equal(resp.Price))
	assert.Equal(t, "PEN", resp.Currency)
	assert.Equal(t, 12, resp.Stock)
	assert.True(t, resp.Available)
}
