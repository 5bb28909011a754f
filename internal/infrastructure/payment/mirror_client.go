package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/feria/backend/internal/domain/payment"
)

const defaultMirrorTimeout = 10 * time.Second

// ErrMirrorMissingEndpoint indicates the mirror endpoint is not configured
var ErrMirrorMissingEndpoint = errors.New("mirror: missing endpoint")

// HTTPMirrorClient posts reconciliation reports to the internal
// bookkeeping endpoint. Reports are best-effort; callers decide what
// a failed report means.
type HTTPMirrorClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPMirrorClient creates a new HTTPMirrorClient
func NewHTTPMirrorClient(endpoint string, timeout time.Duration) (*HTTPMirrorClient, error) {
	if endpoint == "" {
		return nil, ErrMirrorMissingEndpoint
	}
	if timeout <= 0 {
		timeout = defaultMirrorTimeout
	}

	return &HTTPMirrorClient{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Report posts the reconciliation report as JSON
func (c *HTTPMirrorClient) Report(ctx context.Context, report *payment.ReconciliationReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("mirror: failed to marshal report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("mirror: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mirror: request failed: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mirror: HTTP %d", resp.StatusCode)
	}
	return nil
}

// Ensure HTTPMirrorClient implements the MirrorClient interface
var _ payment.MirrorClient = (*HTTPMirrorClient)(nil)
