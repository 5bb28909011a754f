package handler

import (
	"time"

	"github.com/feria/backend/internal/application/fair"
	domainfair "github.com/feria/backend/internal/domain/fair"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================
// Fair Request DTOs
// =====================

// CreateFairRequest represents the request body for creating a fair
type CreateFairRequest struct {
	Name     string    `json:"name" binding:"required,min=1,max=200"`
	Location string    `json:"location" binding:"max=200"`
	SellerID uuid.UUID `json:"seller_id" binding:"required"`
	StartsAt time.Time `json:"starts_at" binding:"required"`
	EndsAt   time.Time `json:"ends_at" binding:"required"`
}

// ListFairsRequest represents query parameters for listing fairs
type ListFairsRequest struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	PageSize int    `form:"page_size,default=20" binding:"min=1,max=100"`
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=open closed"`
}

// =====================
// Fair Response DTOs
// =====================

// FairResponse represents a fair in API responses
type FairResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Location   string     `json:"location,omitempty"`
	SellerID   uuid.UUID  `json:"seller_id"`
	StartsAt   time.Time  `json:"starts_at"`
	EndsAt     time.Time  `json:"ends_at"`
	Active     *bool      `json:"active,omitempty"`
	StatusText string     `json:"status_text,omitempty"`
	Status     string     `json:"status"`
	IsOpen     bool       `json:"is_open"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FairSummaryResponse represents the sales summary of a fair
type FairSummaryResponse struct {
	FairID          uuid.UUID                  `json:"fair_id"`
	SaleCount       int64                      `json:"sale_count"`
	UnitsSold       int                        `json:"units_sold"`
	Revenue         decimal.Decimal            `json:"revenue"`
	Currency        string                     `json:"currency"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
}

func toFairResponse(f *domainfair.Fair) FairResponse {
	return FairResponse{
		ID:         f.ID,
		Name:       f.Name,
		Location:   f.Location,
		SellerID:   f.SellerID,
		StartsAt:   f.StartsAt,
		EndsAt:     f.EndsAt,
		Active:     f.Active,
		StatusText: f.StatusText,
		Status:     f.Status.String(),
		IsOpen:     f.IsOpenAt(time.Now()),
		ClosedAt:   f.ClosedAt,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func toFairSummaryResponse(s *fair.Summary) FairSummaryResponse {
	return FairSummaryResponse{
		FairID:          s.FairID,
		SaleCount:       s.SaleCount,
		UnitsSold:       s.UnitsSold,
		Revenue:         s.Revenue,
		Currency:        s.Currency,
		ByPaymentMethod: s.ByPaymentMethod,
	}
}
