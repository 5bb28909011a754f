package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/fairs", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("middleware context key wins", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Set("request_id", "mid-feria-1")
		c.Request.Header.Set("X-Request-ID", "hdr-feria-2")

		assert.Equal(t, "mid-feria-1", getRequestID(c))
	})

	t.Run("header fallback without middleware", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Request.Header.Set("X-Request-ID", "hdr-feria-2")

		assert.Equal(t, "hdr-feria-2", getRequestID(c))
	})

	t.Run("empty when neither set", func(t *testing.T) {
		c, _ := newTestContext(t)
		assert.Empty(t, getRequestID(c))
	})
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	h := &BaseHandler{}

	t.Run("Success", func(t *testing.T) {
		c, w := newTestContext(t)
		h.Success(c, gin.H{"fair": "Feria de San Miguel"})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "Feria de San Miguel", resp.Data.(map[string]interface{})["fair"])
	})

	t.Run("SuccessWithMeta", func(t *testing.T) {
		c, w := newTestContext(t)
		h.SuccessWithMeta(c, []string{"aceitunas", "queso"}, 42, 2, 20)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.EqualValues(t, 42, resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("Created", func(t *testing.T) {
		c, w := newTestContext(t)
		h.Created(c, gin.H{"sale_id": "s-100"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("NoContent", func(t *testing.T) {
		c, w := newTestContext(t)
		h.NoContent(c)
		// Gin buffers the status until the engine flushes it after the
		// handler chain; a bare test context needs an explicit flush.
		c.Writer.WriteHeaderNow()

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestBaseHandlerErrorHelpers(t *testing.T) {
	h := &BaseHandler{}

	tests := []struct {
		name       string
		send       func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"BadRequest", func(c *gin.Context) { h.BadRequest(c, "missing fair id") }, http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(c *gin.Context) { h.NotFound(c, "fair not found") }, http.StatusNotFound, dto.ErrCodeNotFound},
		{"Unauthorized", func(c *gin.Context) { h.Unauthorized(c, "token expired") }, http.StatusUnauthorized, dto.ErrCodeUnauthorized},
		{"Forbidden", func(c *gin.Context) { h.Forbidden(c, "cashier role required") }, http.StatusForbidden, dto.ErrCodeForbidden},
		{"Conflict", func(c *gin.Context) { h.Conflict(c, "fair already closed") }, http.StatusConflict, dto.ErrCodeConflict},
		{"InternalError", func(c *gin.Context) { h.InternalError(c, "boom") }, http.StatusInternalServerError, dto.ErrCodeInternal},
		{"TooManyRequests", func(c *gin.Context) { h.TooManyRequests(c, "slow down") }, http.StatusTooManyRequests, dto.ErrCodeRateLimited},
		{"UnprocessableEntity", func(c *gin.Context) { h.UnprocessableEntity(c, dto.ErrCodeBusinessRule, "cart is empty") }, http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(t)
			tt.send(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestBaseHandlerErrorCarriesRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)
	c.Set("request_id", "req-feria-77")

	h.NotFound(c, "fair not found")

	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-feria-77", resp.Error.RequestID)
}

func TestBaseHandlerErrorWithCode(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.ErrorWithCode(c, dto.ErrCodeGatewayUnavailable, "RedPay did not answer")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeGatewayUnavailable, resp.Error.Code)
}

func TestBaseHandlerValidationError(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)
	c.Set("request_id", "req-feria-88")

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "quantity", Message: "must be at least zero"},
		{Field: "payment_method", Message: "must be cash, yape or card"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-feria-88", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleError(c, nil)

		assert.Empty(t, w.Body.String())
	})

	t.Run("domain error keeps its code", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleError(c, shared.ErrFairNotRunning)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
		assert.Equal(t, "Fair is not currently running", resp.Error.Message)
	})

	t.Run("wrapped domain error is unwrapped", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleError(c, fmt.Errorf("submit sale: %w", shared.ErrEmptyCart))

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBusinessRule, resp.Error.Code)
	})

	t.Run("unknown error becomes opaque 500", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleError(c, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "pq:", "driver details must not leak")
	})

	t.Run("HandleDomainError delegates", func(t *testing.T) {
		c, w := newTestContext(t)
		h.HandleDomainError(c, shared.ErrNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
