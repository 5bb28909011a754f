package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findRequestLog(t *testing.T, recorded *observer.ObservedLogs) *observer.LoggedEntry {
	t.Helper()
	for _, entry := range recorded.All() {
		if entry.Message == "HTTP request" {
			return &entry
		}
	}
	t.Fatal("request log entry not found")
	return nil
}

func TestGinMiddlewareLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs at warn", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"server error logs at error", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.InfoLevel)

			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.POST("/fairs/:fairId/sales", func(c *gin.Context) {
				c.JSON(tt.status, gin.H{})
			})

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/fairs/fer-01/sales", nil)
			router.ServeHTTP(w, req)

			entry := findRequestLog(t, recorded)
			assert.Equal(t, tt.level, entry.Level)
		})
	}
}

func TestGinMiddlewareFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-feria-7")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	router.GET("/catalog", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"products": []string{}})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/catalog?search=aceitunas&page=2", nil)
	req.Header.Set("User-Agent", "feria-pos/1.4")
	router.ServeHTTP(w, req)

	entry := findRequestLog(t, recorded)
	fields := make(map[string]zap.Field)
	for _, f := range entry.Context {
		fields[f.Key] = f
	}

	assert.Equal(t, "req-feria-7", fields["request_id"].String)
	assert.Equal(t, "GET", fields["method"].String)
	assert.Equal(t, "/catalog", fields["path"].String)
	assert.Contains(t, fields["query"].String, "search=aceitunas")
	assert.Equal(t, "feria-pos/1.4", fields["user_agent"].String)
	assert.Contains(t, fields, "status")
	assert.Contains(t, fields, "latency")
	assert.Contains(t, fields, "client_ip")
	assert.Contains(t, fields, "body_size")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/fairs", func(c *gin.Context) {
		panic("cart store gone")
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/fairs", nil)
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, req)
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	logs := recorded.All()
	require.NotEmpty(t, logs)
	assert.Equal(t, "Panic recovered", logs[0].Message)
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the request-scoped logger", func(t *testing.T) {
		core, _ := observer.New(zapcore.InfoLevel)

		var got *zap.Logger
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/health", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(w, req)

		assert.NotNil(t, got)
	})

	t.Run("falls back to a no-op logger", func(t *testing.T) {
		var got *zap.Logger
		router := gin.New()
		router.GET("/health", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		router.ServeHTTP(w, req)

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("unused") })
	})
}

func TestGinMiddlewareAttachesContextLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-feria-55")
		c.Next()
	})
	router.Use(GinMiddleware(log))
	router.POST("/fairs/:id/sales", func(c *gin.Context) {
		// Services log through the request context, not the gin context.
		L(c.Request.Context()).Info("sale recorded")
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/fairs/f-1/sales", nil)
	router.ServeHTTP(w, req)

	var saleEntry *observer.LoggedEntry
	for _, entry := range recorded.All() {
		if entry.Message == "sale recorded" {
			e := entry
			saleEntry = &e
		}
	}
	require.NotNil(t, saleEntry, "service log through the request context was not captured")
	assert.Equal(t, "req-feria-55", fieldValue(t, *saleEntry, "request_id"))
}
