package handler

import (
	"time"

	domainfair "github.com/feria/backend/internal/domain/fair"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SubmitSaleRequest represents the request body for submitting a sale.
// The reference is the gateway transaction code issued when the terminal
// initiated the card charge; cash and wallet payments omit the body.
type SubmitSaleRequest struct {
	PaymentReference string `json:"payment_reference" binding:"omitempty,max=100"`
}

// ListSalesRequest represents query parameters for listing sales
type ListSalesRequest struct {
	Page     int `form:"page,default=1" binding:"min=1"`
	PageSize int `form:"page_size,default=20" binding:"min=1,max=100"`
}

// SaleItemResponse represents a sale line item in API responses
type SaleItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// SaleResponse represents a recorded sale in API responses
type SaleResponse struct {
	ID               uuid.UUID          `json:"id"`
	FairID           uuid.UUID          `json:"fair_id"`
	Items            []SaleItemResponse `json:"items"`
	PaymentMethod    string             `json:"payment_method"`
	CustomerName     string             `json:"customer_name,omitempty"`
	CustomerContact  string             `json:"customer_contact,omitempty"`
	Total            decimal.Decimal    `json:"total"`
	Currency         string             `json:"currency"`
	Status           string             `json:"status"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	PaidAt           *time.Time         `json:"paid_at,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

func toSaleResponse(s *domainfair.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = SaleItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		}
	}

	return SaleResponse{
		ID:               s.ID,
		FairID:           s.FairID,
		Items:            items,
		PaymentMethod:    string(s.PaymentMethod),
		CustomerName:     s.CustomerName,
		CustomerContact:  s.CustomerContact,
		Total:            s.Total,
		Currency:         s.Currency,
		Status:           s.Status.String(),
		PaymentReference: s.PaymentReference,
		PaidAt:           s.PaidAt,
		CreatedAt:        s.CreatedAt,
	}
}
