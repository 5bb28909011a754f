package cart

import (
	"context"
	"math"

	"github.com/google/uuid"
)

// PaymentMethod enumerates the payment methods an operator can record for a sale
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "cash"
	PaymentYape       PaymentMethod = "yape"
	PaymentPlin       PaymentMethod = "plin"
	PaymentCardCredit PaymentMethod = "card_credit"
	PaymentCardDebit  PaymentMethod = "card_debit"
	PaymentTransfer   PaymentMethod = "transfer"
	PaymentOther      PaymentMethod = "other"
)

// DefaultPaymentMethod is applied to a freshly initialized cart
const DefaultPaymentMethod = PaymentCash

// IsValid returns true if the payment method is one of the known values
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentYape, PaymentPlin, PaymentCardCredit, PaymentCardDebit, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Line is one product's selected quantity within a cart
type Line struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// State holds the selected quantities and buyer metadata for a single fair.
// Quantities never contain zero or negative entries: a quantity clamped to
// zero removes the product from the map entirely.
type State struct {
	Quantities      map[uuid.UUID]int `json:"quantities"`
	PaymentMethod   PaymentMethod     `json:"payment_method"`
	CustomerName    string            `json:"customer_name"`
	CustomerContact string            `json:"customer_contact"`
}

// NewState creates an empty cart with default metadata
func NewState() *State {
	return &State{
		Quantities:    make(map[uuid.UUID]int),
		PaymentMethod: DefaultPaymentMethod,
	}
}

// SetQuantity stores the clamped quantity for a product.
// Negative and non-finite values clamp to zero, fractional values floor.
// A resulting zero removes the entry instead of storing it.
func (s *State) SetQuantity(productID uuid.UUID, value float64) {
	qty := clampQuantity(value)
	if qty == 0 {
		delete(s.Quantities, productID)
		return
	}
	s.Quantities[productID] = qty
}

// Increment raises the product's quantity by one
func (s *State) Increment(productID uuid.UUID) {
	s.SetQuantity(productID, float64(s.Quantity(productID)+1))
}

// Decrement lowers the product's quantity by one, clamping at zero
func (s *State) Decrement(productID uuid.UUID) {
	s.SetQuantity(productID, float64(s.Quantity(productID)-1))
}

// Quantity returns the current quantity for a product, zero when absent
func (s *State) Quantity(productID uuid.UUID) int {
	return s.Quantities[productID]
}

// HasItems returns true if at least one product has a positive quantity
func (s *State) HasItems() bool {
	return len(s.Quantities) > 0
}

// Lines returns the cart content as line items. Order is unspecified.
func (s *State) Lines() []Line {
	lines := make([]Line, 0, len(s.Quantities))
	for id, qty := range s.Quantities {
		lines = append(lines, Line{ProductID: id, Quantity: qty})
	}
	return lines
}

// Reset empties the quantities and restores default metadata
func (s *State) Reset() {
	s.Quantities = make(map[uuid.UUID]int)
	s.PaymentMethod = DefaultPaymentMethod
	s.CustomerName = ""
	s.CustomerContact = ""
}

// ResetQuantities empties the quantities but preserves payment method
// and customer metadata, so the operator does not re-enter them between sales
func (s *State) ResetQuantities() {
	s.Quantities = make(map[uuid.UUID]int)
}

// Clone returns a deep copy so callers cannot alias the internal map
func (s *State) Clone() *State {
	quantities := make(map[uuid.UUID]int, len(s.Quantities))
	for id, qty := range s.Quantities {
		quantities[id] = qty
	}
	return &State{
		Quantities:      quantities,
		PaymentMethod:   s.PaymentMethod,
		CustomerName:    s.CustomerName,
		CustomerContact: s.CustomerContact,
	}
}

func clampQuantity(value float64) int {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	floored := math.Floor(value)
	if floored <= 0 {
		return 0
	}
	return int(floored)
}

// Store is the persistence boundary for cart state, keyed by fair ID.
// Load returns shared.ErrNotFound when no state has been saved for the fair.
type Store interface {
	Load(ctx context.Context, fairID uuid.UUID) (*State, error)
	Save(ctx context.Context, fairID uuid.UUID, state *State) error
	Delete(ctx context.Context, fairID uuid.UUID) error
}
