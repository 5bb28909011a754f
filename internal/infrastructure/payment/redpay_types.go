package payment

import "github.com/shopspring/decimal"

// redpayEnvelope is the outer response wrapper used by every RedPay endpoint
type redpayEnvelope struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Data    *redpayTransaction `json:"data"`
}

// redpayTransaction is the provider's transaction lookup payload
type redpayTransaction struct {
	TransactionID string          `json:"transaction_id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	State         string          `json:"state"`
	ResponseCode  string          `json:"response_code"`
	ApprovalCode  string          `json:"approval_code"`
	CustomerName  string          `json:"customer_name"`
	ProcessedAt   string          `json:"processed_at"`
}
