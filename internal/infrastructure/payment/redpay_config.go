package payment

import (
	"errors"
	"time"
)

// RedPayConfig contains configuration for the RedPay transaction API
type RedPayConfig struct {
	// BaseURL is the API base URL, without trailing slash
	BaseURL string
	// MerchantKey authenticates the merchant on every request
	MerchantKey string
	// Timeout bounds each HTTP call
	Timeout time.Duration
}

// Errors for configuration validation
var (
	ErrRedPayMissingBaseURL     = errors.New("redpay: missing base URL")
	ErrRedPayMissingMerchantKey = errors.New("redpay: missing merchant key")
)

// Validate validates the configuration
func (c *RedPayConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrRedPayMissingBaseURL
	}
	if c.MerchantKey == "" {
		return ErrRedPayMissingMerchantKey
	}
	return nil
}
