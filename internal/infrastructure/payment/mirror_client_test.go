package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feria/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *payment.ReconciliationReport {
	return &payment.ReconciliationReport{
		Reference:     "RP-20260831-0042",
		TransactionID: "txn-991",
		Amount:        decimal.NewFromFloat(35.50),
		Currency:      "PEN",
		StateText:     "Aceptada",
		ResponseCode:  "00",
		ApprovalCode:  "A7831",
		TargetStatus:  "accepted",
	}
}

func TestNewHTTPMirrorClient(t *testing.T) {
	t.Run("requires an endpoint", func(t *testing.T) {
		client, err := NewHTTPMirrorClient("", time.Second)
		assert.Nil(t, client)
		assert.ErrorIs(t, err, ErrMirrorMissingEndpoint)
	})
}

func TestHTTPMirrorClient_Report(t *testing.T) {
	t.Run("posts the report as JSON", func(t *testing.T) {
		var received payment.ReconciliationReport
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer server.Close()

		client, err := NewHTTPMirrorClient(server.URL, time.Second)
		require.NoError(t, err)

		err = client.Report(context.Background(), testReport())

		assert.NoError(t, err)
		assert.Equal(t, "RP-20260831-0042", received.Reference)
		assert.Equal(t, "accepted", received.TargetStatus)
		assert.True(t, decimal.NewFromFloat(35.50).Equal(received.Amount))
	})

	t.Run("returns error on rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, err := NewHTTPMirrorClient(server.URL, time.Second)
		require.NoError(t, err)

		err = client.Report(context.Background(), testReport())

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
	})

	t.Run("returns error when the endpoint is unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client, err := NewHTTPMirrorClient(server.URL, time.Second)
		require.NoError(t, err)

		err = client.Report(context.Background(), testReport())

		assert.Error(t, err)
	})
}
