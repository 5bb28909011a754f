package fair

import (
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeFair = "Fair"
	AggregateTypeSale = "Sale"
)

// Event type constants
const (
	EventTypeFairCreated  = "FairCreated"
	EventTypeFairClosed   = "FairClosed"
	EventTypeSaleRecorded = "SaleRecorded"
	EventTypeSalePaid     = "SalePaid"
)

// FairCreatedEvent is raised when a new fair is created
type FairCreatedEvent struct {
	shared.BaseDomainEvent
	FairID   uuid.UUID `json:"fair_id"`
	Name     string    `json:"name"`
	SellerID uuid.UUID `json:"seller_id"`
}

// NewFairCreatedEvent creates a new FairCreatedEvent
func NewFairCreatedEvent(f *Fair) *FairCreatedEvent {
	return &FairCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFairCreated, AggregateTypeFair, f.ID, f.TenantID),
		FairID:          f.ID,
		Name:            f.Name,
		SellerID:        f.SellerID,
	}
}

// EventType returns the event type name
func (e *FairCreatedEvent) EventType() string {
	return EventTypeFairCreated
}

// FairClosedEvent is raised when a fair is closed
type FairClosedEvent struct {
	shared.BaseDomainEvent
	FairID uuid.UUID `json:"fair_id"`
	Name   string    `json:"name"`
}

// NewFairClosedEvent creates a new FairClosedEvent
func NewFairClosedEvent(f *Fair) *FairClosedEvent {
	return &FairClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFairClosed, AggregateTypeFair, f.ID, f.TenantID),
		FairID:          f.ID,
		Name:            f.Name,
	}
}

// EventType returns the event type name
func (e *FairClosedEvent) EventType() string {
	return EventTypeFairClosed
}

// SaleRecordedEvent is raised when a sale is recorded under a fair
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	FairID        uuid.UUID       `json:"fair_id"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
}

// NewSaleRecordedEvent creates a new SaleRecordedEvent
func NewSaleRecordedEvent(s *Sale) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		FairID:          s.FairID,
		Total:           s.Total,
		Currency:        s.Currency,
		PaymentMethod:   string(s.PaymentMethod),
	}
}

// EventType returns the event type name
func (e *SaleRecordedEvent) EventType() string {
	return EventTypeSaleRecorded
}

// SalePaidEvent is raised when the gateway confirms payment for a sale
type SalePaidEvent struct {
	shared.BaseDomainEvent
	SaleID           uuid.UUID       `json:"sale_id"`
	FairID           uuid.UUID       `json:"fair_id"`
	Total            decimal.Decimal `json:"total"`
	PaymentReference string          `json:"payment_reference"`
}

// NewSalePaidEvent creates a new SalePaidEvent
func NewSalePaidEvent(s *Sale) *SalePaidEvent {
	return &SalePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalePaid, AggregateTypeSale, s.ID, s.TenantID),
		SaleID:          s.ID,
		FairID:          s.FairID,
		Total:           s.Total,
		PaymentReference: s.PaymentReference,
	}
}

// EventType returns the event type name
func (e *SalePaidEvent) EventType() string {
	return EventTypeSalePaid
}
