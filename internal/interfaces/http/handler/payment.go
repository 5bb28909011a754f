package handler

import (
	"time"

	apppayment "github.com/feria/backend/internal/application/payment"
	"github.com/feria/backend/internal/domain/payment"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles payment gateway return and status endpoints.
// The return endpoint is hit by the gateway's browser redirect and does
// not require authentication.
type PaymentHandler struct {
	BaseHandler
	reconciler *apppayment.Reconciler
	records    payment.RecordRepository
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(reconciler *apppayment.Reconciler, records payment.RecordRepository) *PaymentHandler {
	return &PaymentHandler{
		reconciler: reconciler,
		records:    records,
	}
}

// PaymentReturnResponse represents the outcome of one gateway return
type PaymentReturnResponse struct {
	Reference        string         `json:"reference"`
	Outcome          string         `json:"outcome"`
	AlreadyProcessed bool           `json:"already_processed,omitempty"`
	Detail           *PaymentDetail `json:"detail,omitempty"`
}

// PaymentDetail carries the verified transaction data
type PaymentDetail struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MethodLabel   string          `json:"method_label,omitempty"`
	StateText     string          `json:"state_text,omitempty"`
	ResponseCode  string          `json:"response_code,omitempty"`
	ApprovalCode  string          `json:"approval_code,omitempty"`
	CustomerName  string          `json:"customer_name,omitempty"`
	ProcessedAt   time.Time       `json:"processed_at"`
}

// PaymentRecordResponse represents a stored reconciliation record
type PaymentRecordResponse struct {
	Reference     string          `json:"reference"`
	TransactionID string          `json:"transaction_id,omitempty"`
	SaleID        *uuid.UUID      `json:"sale_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MethodLabel   string          `json:"method_label,omitempty"`
	StateText     string          `json:"state_text,omitempty"`
	ResponseCode  string          `json:"response_code,omitempty"`
	ApprovalCode  string          `json:"approval_code,omitempty"`
	Outcome       string          `json:"outcome"`
	Mirrored      bool            `json:"mirrored"`
	ProcessedAt   time.Time       `json:"processed_at"`
}

// HandleReturn godoc
// @Summary      Handle gateway return
// @Description  Verify and classify a payment gateway return by its transaction reference
// @Tags         payments
// @Produce      json
// @Param        reference query string true "Transaction reference"
// @Success      200 {object} dto.Response{data=PaymentReturnResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/return [get]
func (h *PaymentHandler) HandleReturn(c *gin.Context) {
	reference := c.Query("reference")

	result, err := h.reconciler.HandleReturn(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := PaymentReturnResponse{
		Reference:        reference,
		Outcome:          string(result.Outcome),
		AlreadyProcessed: result.AlreadyProcessed,
	}
	if v := result.Verification; v != nil {
		response.Detail = &PaymentDetail{
			TransactionID: v.TransactionID,
			Amount:        v.Amount.Amount(),
			Currency:      string(v.Amount.Currency()),
			MethodLabel:   v.MethodLabel,
			StateText:     v.StateText,
			ResponseCode:  v.ResponseCode,
			ApprovalCode:  v.ApprovalCode,
			CustomerName:  v.CustomerName,
			ProcessedAt:   v.ProcessedAt,
		}
	}

	h.Success(c, response)
}

// GetStatus godoc
// @Summary      Get payment status
// @Description  Look up the stored reconciliation record for a reference
// @Tags         payments
// @Produce      json
// @Param        reference path string true "Transaction reference"
// @Success      200 {object} dto.Response{data=PaymentRecordResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /payments/{reference} [get]
func (h *PaymentHandler) GetStatus(c *gin.Context) {
	reference := c.Param("reference")

	record, err := h.records.FindByReference(c.Request.Context(), reference)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PaymentRecordResponse{
		Reference:     record.Reference,
		TransactionID: record.TransactionID,
		SaleID:        record.SaleID,
		Amount:        record.Amount,
		Currency:      record.Currency,
		MethodLabel:   record.MethodLabel,
		StateText:     record.StateText,
		ResponseCode:  record.ResponseCode,
		ApprovalCode:  record.ApprovalCode,
		Outcome:       string(record.Outcome),
		Mirrored:      record.Mirrored,
		ProcessedAt:   record.ProcessedAt,
	})
}
