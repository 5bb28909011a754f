package fair

import (
	"strings"
	"time"

	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// FairStatus represents the lifecycle status of a fair
type FairStatus string

const (
	FairStatusOpen   FairStatus = "OPEN"
	FairStatusClosed FairStatus = "CLOSED"
)

// IsValid checks if the status is a valid FairStatus
func (s FairStatus) IsValid() bool {
	return s == FairStatusOpen || s == FairStatusClosed
}

// String returns the string representation of FairStatus
func (s FairStatus) String() string {
	return string(s)
}

// Keyword sets used to interpret free-text status labels coming from
// event descriptions. Closed keywords take precedence over active ones.
var (
	closedKeywords = []string{"closed", "cerrada", "cerrado", "finalizada", "finalizado", "inactive", "inactiva"}
	activeKeywords = []string{"open", "active", "abierta", "abierto", "activa", "en curso", "running"}
)

// Fair represents a time-boxed sales occasion (market, pop-up) under
// which sales are recorded against a seller's product catalog
type Fair struct {
	shared.TenantAggregateRoot
	Name       string     `gorm:"type:varchar(200);not null"`
	Location   string     `gorm:"type:varchar(200)"`
	SellerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartsAt   time.Time  `gorm:"not null"`
	EndsAt     time.Time  `gorm:"not null"`
	Active     *bool      `gorm:"column:active"` // explicit open/closed override; nil means not set
	StatusText string     `gorm:"type:varchar(100)"`
	Status     FairStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	ClosedAt   *time.Time
}

// TableName returns the table name for GORM
func (Fair) TableName() string {
	return "fairs"
}

// NewFair creates a new fair
func NewFair(tenantID, sellerID uuid.UUID, name, location string, startsAt, endsAt time.Time) (*Fair, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Fair name cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SELLER", "Seller ID cannot be empty")
	}
	if !endsAt.IsZero() && !startsAt.IsZero() && endsAt.Before(startsAt) {
		return nil, shared.NewDomainError("INVALID_WINDOW", "Fair cannot end before it starts")
	}

	f := &Fair{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Location:            location,
		SellerID:            sellerID,
		StartsAt:            startsAt,
		EndsAt:              endsAt,
		Status:              FairStatusOpen,
	}

	f.AddDomainEvent(NewFairCreatedEvent(f))

	return f, nil
}

// IsOpenAt reports whether sales can be recorded against the fair at t.
// Precedence: the persisted CLOSED status always wins, then the explicit
// active flag, then free-text status keywords (closed keywords beat active
// ones), and only when none of those apply the declared time window.
func (f *Fair) IsOpenAt(t time.Time) bool {
	if f.Status == FairStatusClosed {
		return false
	}
	if f.Active != nil {
		return *f.Active
	}
	if f.StatusText != "" {
		text := strings.ToLower(f.StatusText)
		for _, kw := range closedKeywords {
			if strings.Contains(text, kw) {
				return false
			}
		}
		for _, kw := range activeKeywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	if f.StartsAt.IsZero() && f.EndsAt.IsZero() {
		return false
	}
	if !f.StartsAt.IsZero() && t.Before(f.StartsAt) {
		return false
	}
	if !f.EndsAt.IsZero() && t.After(f.EndsAt) {
		return false
	}
	return true
}

// Close transitions the fair to CLOSED. Closing is terminal.
func (f *Fair) Close() error {
	if f.Status == FairStatusClosed {
		return shared.NewDomainError("INVALID_STATE", "Fair is already closed")
	}

	now := time.Now()
	f.Status = FairStatusClosed
	f.ClosedAt = &now
	f.Touch()

	f.AddDomainEvent(NewFairClosedEvent(f))

	return nil
}

// SetActive sets the explicit open/closed override flag
func (f *Fair) SetActive(active bool) {
	f.Active = &active
	f.Touch()
}

// SetStatusText replaces the free-text status label
func (f *Fair) SetStatusText(text string) {
	f.StatusText = text
	f.Touch()
}
