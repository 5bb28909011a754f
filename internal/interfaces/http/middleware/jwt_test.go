package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/feria/backend/internal/domain/identity"
	"github.com/feria/backend/internal/infrastructure/auth"
	"github.com/feria/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "feria-access-secret-32-characters",
		RefreshSecret:          "feria-refresh-secret-32-character",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "feria-backend",
		MaxRefreshCount:        10,
	})
}

func operatorTokenPair(jwtService *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	input := auth.GenerateTokenInput{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Username: "vendedora1",
		Role:     string(identity.RoleOperator),
	}
	pair, _ := jwtService.GenerateTokenPair(input)
	return pair, input
}

func serveProtected(mw gin.HandlerFunc, authorization string, extra ...gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	handlers := append(extra, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/fairs", handlers...)

	req := httptest.NewRequest(http.MethodGet, "/fairs", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddlewareAcceptsValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := operatorTokenPair(jwtService)

	var claims *auth.Claims
	rec := serveProtected(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		claims = GetJWTClaims(c)
		c.Next()
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, input.TenantID.String(), claims.TenantID)
}

func TestJWTAuthMiddlewareRejections(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := operatorTokenPair(jwtService)

	expiredSvc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "feria-access-secret-32-characters",
		AccessTokenExpiration:  -time.Hour,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "feria-backend",
	})
	expiredPair, _ := operatorTokenPair(expiredSvc)

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dmVuZGVkb3JhMTpjbGF2ZQ=="},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
		{"expired token", "Bearer " + expiredPair.AccessToken},
		{"refresh token on an API route", "Bearer " + pair.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveProtected(JWTAuthMiddleware(jwtService), tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWTAuthMiddlewareSkipPaths(t *testing.T) {
	jwtService := newTestJWTService()

	t.Run("configured path", func(t *testing.T) {
		cfg := DefaultJWTConfig(jwtService)
		cfg.SkipPaths = append(cfg.SkipPaths, "/public")

		router := gin.New()
		router.Use(JWTAuthMiddlewareWithConfig(cfg))
		router.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("defaults", func(t *testing.T) {
		// The gateway return redirect must stay reachable: the shopper's
		// browser lands there without any feria credentials.
		skipped := []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/payments/return",
		}

		router := gin.New()
		router.Use(JWTAuthMiddleware(jwtService))
		for _, path := range skipped {
			router.GET(path, func(c *gin.Context) { c.Status(http.StatusOK) })
		}

		for _, path := range skipped {
			t.Run(path, func(t *testing.T) {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				assert.Equal(t, http.StatusOK, rec.Code)
			})
		}
	})
}

func TestJWTAuthMiddlewareContextValues(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := operatorTokenPair(jwtService)

	var userID, tenantID, username, role string
	rec := serveProtected(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		userID = GetJWTUserID(c)
		tenantID = GetJWTTenantID(c)
		username = GetJWTUsername(c)
		role = GetJWTRole(c)
		c.Next()
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, input.UserID.String(), userID)
	assert.Equal(t, input.TenantID.String(), tenantID)
	assert.Equal(t, "vendedora1", username)
	assert.Equal(t, string(identity.RoleOperator), role)
}

func TestJWTGettersWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTTenantID(c))
	assert.Empty(t, GetJWTUsername(c))
	assert.Empty(t, GetJWTRole(c))
}

func TestJWTAuthMiddlewareCustomOnError(t *testing.T) {
	jwtService := newTestJWTService()

	called := false
	cfg := DefaultJWTConfig(jwtService)
	cfg.OnError = func(c *gin.Context, err error) {
		called = true
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"custom": "error"})
	}

	rec := serveProtected(JWTAuthMiddlewareWithConfig(cfg), "")

	assert.True(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJWTAuthMiddlewareBlacklist(t *testing.T) {
	jwtService := newTestJWTService()
	blacklist := auth.NewInMemoryTokenBlacklist()

	cfg := DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = blacklist

	pair, input := operatorTokenPair(jwtService)

	rec := serveProtected(JWTAuthMiddlewareWithConfig(cfg), "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code, "token is valid before revocation")

	// Password change revokes everything the user holds.
	require.NoError(t, blacklist.AddUserTokensToBlacklist(context.Background(), input.UserID.String(), time.Hour))

	rec = serveProtected(JWTAuthMiddlewareWithConfig(cfg), "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := operatorTokenPair(jwtService)

	t.Run("matching role passes", func(t *testing.T) {
		rec := serveProtected(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken,
			RequireRole(string(identity.RoleOperator), string(identity.RoleAdmin)))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other role is forbidden", func(t *testing.T) {
		rec := serveProtected(JWTAuthMiddleware(jwtService), "Bearer "+pair.AccessToken,
			RequireRole(string(identity.RoleAdmin)))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("missing claims are forbidden", func(t *testing.T) {
		router := gin.New()
		router.GET("/fairs", RequireRole(string(identity.RoleAdmin)), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fairs", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
