package handler

import (
	domaincart "github.com/feria/backend/internal/domain/cart"
	"github.com/google/uuid"
)

// =====================
// Cart Request DTOs
// =====================

// SetQuantityRequest represents the request body for setting a product quantity.
// The quantity is accepted as a float and clamped server-side: negative and
// non-finite values become zero, fractional values floor.
type SetQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  float64   `json:"quantity"`
}

// AdjustQuantityRequest represents the request body for stepping a quantity
type AdjustQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// SetPaymentMethodRequest represents the request body for choosing a payment method
type SetPaymentMethodRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required,oneof=cash yape plin card_credit card_debit transfer other"`
}

// SetCustomerRequest represents the request body for cart customer metadata
type SetCustomerRequest struct {
	Name    *string `json:"name"`
	Contact *string `json:"contact"`
}

// =====================
// Cart Response DTOs
// =====================

// CartLineResponse represents one product's quantity in the cart
type CartLineResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CartResponse represents the cart state in API responses
type CartResponse struct {
	FairID          uuid.UUID          `json:"fair_id"`
	Lines           []CartLineResponse `json:"lines"`
	PaymentMethod   string             `json:"payment_method"`
	CustomerName    string             `json:"customer_name,omitempty"`
	CustomerContact string             `json:"customer_contact,omitempty"`
}

func toCartResponse(fairID uuid.UUID, state *domaincart.State) CartResponse {
	lines := state.Lines()
	out := make([]CartLineResponse, len(lines))
	for i, line := range lines {
		out[i] = CartLineResponse{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
		}
	}

	return CartResponse{
		FairID:          fairID,
		Lines:           out,
		PaymentMethod:   string(state.PaymentMethod),
		CustomerName:    state.CustomerName,
		CustomerContact: state.CustomerContact,
	}
}
