package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/feria/backend/internal/domain/payment"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/domain/shared/valueobject"
)

const (
	redpayTransactionPath = "/v1/transactions/%s"
	redpayMerchantHeader  = "X-Merchant-Key"

	defaultRedPayTimeout = 30 * time.Second
)

// RedPayAdapter implements the Gateway interface for the RedPay provider
type RedPayAdapter struct {
	config     *RedPayConfig
	httpClient *http.Client
}

// NewRedPayAdapter creates a new RedPay adapter
func NewRedPayAdapter(config *RedPayConfig) (*RedPayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultRedPayTimeout
	}

	return &RedPayAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Name returns the provider identifier
func (a *RedPayAdapter) Name() string {
	return "redpay"
}

// VerifyTransaction looks up a transaction by its reference code
func (a *RedPayAdapter) VerifyTransaction(ctx context.Context, reference string) (*payment.Verification, error) {
	if reference == "" {
		return nil, shared.ErrMissingReference
	}

	path := fmt.Sprintf(redpayTransactionPath, url.PathEscape(reference))
	reqURL := a.config.BaseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("redpay: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(redpayMerchantHeader, a.config.MerchantKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("redpay: failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, shared.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrGatewayUnavailable, resp.StatusCode)
	}

	var envelope redpayEnvelope
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("redpay: failed to parse response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		if envelope.Message != "" {
			return nil, fmt.Errorf("%w: %s", shared.ErrGatewayUnavailable, envelope.Message)
		}
		return nil, fmt.Errorf("%w: unsuccessful envelope", shared.ErrGatewayUnavailable)
	}

	return a.toVerification(envelope.Data), nil
}

// toVerification maps the provider payload to the domain port type
func (a *RedPayAdapter) toVerification(tx *redpayTransaction) *payment.Verification {
	amount, err := valueobject.NewMoney(tx.Amount, valueobject.Currency(tx.Currency))
	if err != nil {
		// Provider omitted the currency; everything it settles is in soles
		amount = valueobject.NewMoneyPEN(tx.Amount)
	}

	v := &payment.Verification{
		TransactionID: tx.TransactionID,
		Reference:     tx.Reference,
		Amount:        amount,
		MethodLabel:   tx.Method,
		StateText:     tx.State,
		ResponseCode:  tx.ResponseCode,
		ApprovalCode:  tx.ApprovalCode,
		CustomerName:  tx.CustomerName,
	}

	if tx.ProcessedAt != "" {
		if t, err := time.Parse(time.RFC3339, tx.ProcessedAt); err == nil {
			v.ProcessedAt = t
		}
	}

	return v
}

// Ensure RedPayAdapter implements the Gateway interface
var _ payment.Gateway = (*RedPayAdapter)(nil)
