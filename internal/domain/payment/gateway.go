package payment

import (
	"context"
	"strings"
	"time"

	"github.com/feria/backend/internal/domain/shared/valueobject"
)

// Outcome is the classified result of a gateway transaction
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomePending  Outcome = "pending"
	OutcomeUnknown  Outcome = "unknown"
)

// String returns the string representation of Outcome
func (o Outcome) String() string {
	return string(o)
}

// Gateway response codes from the provider's settlement table
const (
	ResponseCodeAccepted = "00"
	ResponseCodeRejected = "05"
	ResponseCodePending  = "99"
)

// Verification is the provider-reported result of a transaction lookup
type Verification struct {
	TransactionID string
	Reference     string
	Amount        valueobject.Money
	MethodLabel   string
	StateText     string
	ResponseCode  string
	ApprovalCode  string
	CustomerName  string
	ProcessedAt   time.Time
}

// Gateway is the port to the external payment processor. The gateway is
// authoritative for transaction outcomes; this service only verifies and
// mirrors, it never settles.
type Gateway interface {
	// Name returns the provider identifier
	Name() string

	// VerifyTransaction looks up a transaction by its reference code
	VerifyTransaction(ctx context.Context, reference string) (*Verification, error)
}

// Classify maps a verification's state text and response code to an
// outcome. The textual state wins when it matches a known marker; the
// numeric response code is only a fallback. The returned flag reports
// whether text and code pointed at different outcomes, so callers can
// log the disagreement for audit.
func Classify(stateText, responseCode string) (Outcome, bool) {
	byText := classifyText(stateText)
	byCode := classifyCode(responseCode)

	disagree := byText != OutcomeUnknown && byCode != OutcomeUnknown && byText != byCode

	if byText != OutcomeUnknown {
		return byText, disagree
	}
	if byCode != OutcomeUnknown {
		return byCode, disagree
	}
	return OutcomeUnknown, false
}

func classifyText(stateText string) Outcome {
	text := strings.ToLower(stateText)
	switch {
	case text == "":
		return OutcomeUnknown
	case strings.Contains(text, "aceptada"), strings.Contains(text, "aprobada"):
		return OutcomeAccepted
	case strings.Contains(text, "rechazada"), strings.Contains(text, "fallida"), strings.Contains(text, "denegada"):
		return OutcomeRejected
	case strings.Contains(text, "pendiente"):
		return OutcomePending
	}
	return OutcomeUnknown
}

func classifyCode(responseCode string) Outcome {
	switch responseCode {
	case ResponseCodeAccepted:
		return OutcomeAccepted
	case ResponseCodeRejected:
		return OutcomeRejected
	case ResponseCodePending:
		return OutcomePending
	}
	return OutcomeUnknown
}
