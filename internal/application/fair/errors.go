package fair

import (
	"errors"
	"strings"

	"github.com/feria/backend/internal/domain/shared"
)

// Friendly messages surfaced to the operator at the stand
const (
	msgInsufficientStock = "No hay stock suficiente para completar la venta"
	msgFairNotRunning    = "La feria no está activa en este momento"
)

var stockMarkers = []string{"insufficient stock", "sin stock", "stock insuficiente", "out of stock"}

var notRunningMarkers = []string{"not running", "not active", "closed", "cerrada", "no activa", "inactiva"}

// FriendlyMessage maps a submission error to the message shown to the
// operator. Known domain errors map directly; anything else is matched
// by case-insensitive substrings, and unmatched errors surface their
// raw text rather than a silent generic label.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case shared.ErrInsufficientStock.Code:
			return msgInsufficientStock
		case shared.ErrFairNotRunning.Code:
			return msgFairNotRunning
		}
	}

	text := strings.ToLower(err.Error())
	for _, marker := range stockMarkers {
		if strings.Contains(text, marker) {
			return msgInsufficientStock
		}
	}
	for _, marker := range notRunningMarkers {
		if strings.Contains(text, marker) {
			return msgFairNotRunning
		}
	}

	return err.Error()
}
