package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feria/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSaleRouter(maxBytes int64) *gin.Engine {
	router := gin.New()
	router.Use(BodyLimit(maxBytes))
	router.POST("/fairs/current/sales", func(c *gin.Context) {
		var payload map[string]any
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.String(http.StatusBadRequest, "unreadable body")
			return
		}
		c.String(http.StatusCreated, "ok")
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("small sale payload passes", func(t *testing.T) {
		router := newSaleRouter(1024)

		body := strings.NewReader(`{"payment_reference":"RP-20260831-0042"}`)
		req := httptest.NewRequest(http.MethodPost, "/fairs/current/sales", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("oversized declared length is rejected with the error envelope", func(t *testing.T) {
		router := newSaleRouter(64)

		body := strings.NewReader(`{"customer_name":"` + strings.Repeat("a", 200) + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/fairs/current/sales", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "REQUEST_TOO_LARGE", resp.Error.Code)
	})

	t.Run("bodyless requests are untouched", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(8))
		router.GET("/fairs", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest(http.MethodGet, "/fairs", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("streaming body without a declared length is still capped", func(t *testing.T) {
		router := newSaleRouter(32)

		body := strings.NewReader(`{"customer_name":"` + strings.Repeat("b", 100) + `"}`)
		req := httptest.NewRequest(http.MethodPost, "/fairs/current/sales", body)
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
