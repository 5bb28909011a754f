package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeGatewayUnavailable, http.StatusBadGateway},
		{"SOMETHING_NOBODY_MAPPED", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		domain   string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"FAIR_NOT_RUNNING", ErrCodeInvalidState},
		{"FAIR_CLOSED", ErrCodeInvalidState},
		{"EMPTY_CART", ErrCodeBusinessRule},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"MISSING_REFERENCE", ErrCodeBadRequest},
		{"GATEWAY_UNAVAILABLE", ErrCodeGatewayUnavailable},
		{"INVALID_CREDENTIALS", ErrCodeUnauthorized},
		{"USERNAME_TAKEN", ErrCodeAlreadyExists},
		{"ACCOUNT_LOCKED", ErrCodeForbidden},
		// Already-normalized and unknown codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_CODE", "CUSTOM_CODE"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.domain))
		})
	}
}

// Every domain code the services raise must resolve to a real HTTP
// status through normalize-then-map.
func TestDomainCodesResolveToMappedStatuses(t *testing.T) {
	domainCodes := []string{
		"NOT_FOUND", "CONCURRENCY_CONFLICT", "FAIR_NOT_RUNNING",
		"FAIR_CLOSED", "EMPTY_CART", "INSUFFICIENT_STOCK",
		"MISSING_REFERENCE", "GATEWAY_UNAVAILABLE", "INVALID_CREDENTIALS",
		"TOKEN_EXPIRED", "TOKEN_INVALID", "USERNAME_TAKEN",
	}

	for _, code := range domainCodes {
		t.Run(code, func(t *testing.T) {
			normalized := NormalizeErrorCode(code)
			_, ok := ErrorCodeHTTPStatus[normalized]
			assert.True(t, ok, "%s normalizes to %s which has no HTTP status", code, normalized)
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("FAIR_NOT_RUNNING", "The fair is not accepting sales")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	// Domain codes are normalized on the way out
	assert.Equal(t, ErrCodeInvalidState, resp.Error.Code)
	assert.Equal(t, "The fair is not accepting sales", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Fair not found", "req-feria-11")

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "req-feria-11", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "payment_method", Message: "Must be one of: cash yape plin"},
		{Field: "customer_phone", Message: "Must be at least 9 characters long"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-feria-12", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "payment_method", resp.Error.Details[0].Field)
}

func TestErrorResponseJSONRoundTrip(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeConcurrencyConflict, "Sale was modified concurrently", "req-feria-13")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeConcurrencyConflict, decoded.Error.Code)
	assert.Equal(t, "req-feria-13", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestSuccessResponses(t *testing.T) {
	t.Run("plain success", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"status": "COMPLETED"})

		assert.True(t, resp.Success)
		assert.NotNil(t, resp.Data)
		assert.Nil(t, resp.Error)
		assert.Nil(t, resp.Meta)
	})

	t.Run("paginated success computes total pages", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]string{"s1", "s2"}, 41, 2, 20)

		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(41), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("non-positive page size falls back to the default", func(t *testing.T) {
		for _, size := range []int{0, -1} {
			resp := NewSuccessResponseWithMeta(nil, 100, 1, size)
			require.NotNil(t, resp.Meta)
			assert.Equal(t, 20, resp.Meta.PageSize)
			assert.Equal(t, 5, resp.Meta.TotalPages)
		}
	})
}
