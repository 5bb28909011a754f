package fair

import (
	"time"

	"github.com/feria/backend/internal/domain/cart"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a recorded sale
type SaleStatus string

const (
	SaleStatusCompleted      SaleStatus = "COMPLETED"       // settled at the stand (cash and wallet payments)
	SaleStatusPendingPayment SaleStatus = "PENDING_PAYMENT" // waiting for a gateway confirmation
	SaleStatusPaid           SaleStatus = "PAID"            // gateway confirmed the payment
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusCompleted, SaleStatusPendingPayment, SaleStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// SaleItem represents a line item in a sale
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (SaleItem) TableName() string {
	return "sale_items"
}

// NewSaleItem creates a new sale line item
func NewSaleItem(saleID, productID uuid.UUID, productName string, quantity int, unitPrice valueobject.Money) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &SaleItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Subtotal:    unitPrice.MultiplyByInt(int64(quantity)).Amount(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Sale represents one recorded sale under a fair
type Sale struct {
	shared.TenantAggregateRoot
	FairID           uuid.UUID          `gorm:"type:uuid;not null;index"`
	Items            []SaleItem         `gorm:"foreignKey:SaleID"`
	PaymentMethod    cart.PaymentMethod `gorm:"type:varchar(20);not null"`
	CustomerName     string             `gorm:"type:varchar(200)"`
	CustomerContact  string             `gorm:"type:varchar(200)"`
	Total            decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency         string             `gorm:"type:varchar(3);not null;default:'PEN'"`
	Status           SaleStatus         `gorm:"type:varchar(20);not null"`
	PaymentReference string             `gorm:"type:varchar(100);index"`
	PaidAt           *time.Time
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale under a fair. Card payments start in
// PENDING_PAYMENT and wait for the gateway; everything else settles
// at the stand and is COMPLETED immediately.
func NewSale(tenantID, fairID uuid.UUID, method cart.PaymentMethod, customerName, customerContact string) (*Sale, error) {
	if fairID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FAIR", "Fair ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	status := SaleStatusCompleted
	if method == cart.PaymentCardCredit || method == cart.PaymentCardDebit {
		status = SaleStatusPendingPayment
	}

	sale := &Sale{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		FairID:              fairID,
		Items:               make([]SaleItem, 0),
		PaymentMethod:       method,
		CustomerName:        customerName,
		CustomerContact:     customerContact,
		Total:               decimal.Zero,
		Currency:            string(valueobject.DefaultCurrency),
		Status:              status,
	}

	sale.AddDomainEvent(NewSaleRecordedEvent(sale))

	return sale, nil
}

// AddItem adds a line item and recalculates the total
func (s *Sale) AddItem(productID uuid.UUID, productName string, quantity int, unitPrice valueobject.Money) (*SaleItem, error) {
	for _, item := range s.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in sale")
		}
	}

	item, err := NewSaleItem(s.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotal()
	s.Touch()

	return item, nil
}

// SetPaymentReference links the sale to a gateway transaction reference
func (s *Sale) SetPaymentReference(reference string) {
	s.PaymentReference = reference
	s.Touch()
}

// MarkPaid transitions a pending sale to PAID after gateway confirmation
func (s *Sale) MarkPaid() error {
	if s.Status == SaleStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Sale is already paid")
	}
	if s.Status != SaleStatusPendingPayment {
		return shared.NewDomainError("INVALID_STATE", "Only pending sales can be marked paid")
	}

	now := time.Now()
	s.Status = SaleStatusPaid
	s.PaidAt = &now
	s.Touch()

	s.AddDomainEvent(NewSalePaidEvent(s))

	return nil
}

// TotalMoney returns the sale total as a Money value object
func (s *Sale) TotalMoney() valueobject.Money {
	m, err := valueobject.NewMoney(s.Total, valueobject.Currency(s.Currency))
	if err != nil {
		return valueobject.NewMoneyPEN(s.Total)
	}
	return m
}

// UnitCount returns the number of units across all line items
func (s *Sale) UnitCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

func (s *Sale) recalculateTotal() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal)
	}
	s.Total = total
}
