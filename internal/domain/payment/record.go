package payment

import (
	"context"
	"time"

	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Record is the audit trail row for one reconciled gateway transaction.
// At most one record exists per reference.
type Record struct {
	shared.BaseEntity
	Reference     string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	TransactionID string          `gorm:"type:varchar(100)"`
	SaleID        *uuid.UUID      `gorm:"type:uuid;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Currency      string          `gorm:"type:varchar(3);not null"`
	MethodLabel   string          `gorm:"type:varchar(100)"`
	StateText     string          `gorm:"type:varchar(100)"`
	ResponseCode  string          `gorm:"type:varchar(10)"`
	ApprovalCode  string          `gorm:"type:varchar(20)"`
	Outcome       Outcome         `gorm:"type:varchar(20);not null"`
	Mirrored      bool            `gorm:"not null;default:false"`
	ProcessedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "payment_records"
}

// NewRecord builds the audit record for a classified verification
func NewRecord(v *Verification, outcome Outcome) *Record {
	processedAt := v.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}
	return &Record{
		BaseEntity:    shared.NewBaseEntity(),
		Reference:     v.Reference,
		TransactionID: v.TransactionID,
		Amount:        v.Amount.Amount(),
		Currency:      string(v.Amount.Currency()),
		MethodLabel:   v.MethodLabel,
		StateText:     v.StateText,
		ResponseCode:  v.ResponseCode,
		ApprovalCode:  v.ApprovalCode,
		Outcome:       outcome,
		ProcessedAt:   processedAt,
	}
}

// LinkSale associates the record with the sale it settled
func (r *Record) LinkSale(saleID uuid.UUID) {
	r.SaleID = &saleID
	r.Touch()
}

// MarkMirrored flags that the bookkeeping mirror accepted the report
func (r *Record) MarkMirrored() {
	r.Mirrored = true
	r.Touch()
}

// RecordRepository defines the interface for payment record persistence
type RecordRepository interface {
	// FindByReference finds a record by its gateway reference
	FindByReference(ctx context.Context, reference string) (*Record, error)

	// Save creates or updates a record
	Save(ctx context.Context, r *Record) error
}

// ReconciliationReport is the payload mirrored to the internal
// bookkeeping endpoint after an outcome has been classified
type ReconciliationReport struct {
	Reference     string          `json:"reference"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	StateText     string          `json:"state"`
	ResponseCode  string          `json:"response_code"`
	ApprovalCode  string          `json:"approval_code"`
	TargetStatus  string          `json:"target_status"`
}

// MirrorClient is the port to the internal bookkeeping endpoint.
// Reports are best-effort: a failed Report never alters an outcome.
type MirrorClient interface {
	Report(ctx context.Context, report *ReconciliationReport) error
}
