package identity

import (
	"context"
	"testing"
	"time"

	"github.com/feria/backend/internal/domain/identity"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/feria/backend/internal/infrastructure/auth"
	"github.com/feria/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, tenantID uuid.UUID, username string) (*identity.User, error) {
	args := m.Called(ctx, tenantID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, u *identity.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-auth-service-tests",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "feria-test",
		MaxRefreshCount:        3,
	})
}

func newTestUser(t *testing.T, tenantID uuid.UUID, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(tenantID, "vendedora1", password, identity.RoleOperator)
	require.NoError(t, err)
	return user
}

func TestAuthServiceLogin(t *testing.T) {
	tenantID := uuid.New()

	t.Run("successful login returns token pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByUsername", mock.Anything, tenantID, "vendedora1").Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), auth.NewInMemoryTokenBlacklist(), nil)

		result, err := svc.Login(context.Background(), LoginInput{
			TenantID: tenantID,
			Username: "vendedora1",
			Password: "Feria2024",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "vendedora1", result.User.Username)
		assert.Equal(t, "operator", result.User.Role)
		assert.Equal(t, 0, user.FailedAttempts)
		require.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password counts a failed attempt", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByUsername", mock.Anything, tenantID, "vendedora1").Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		_, err := svc.Login(context.Background(), LoginInput{
			TenantID: tenantID,
			Username: "vendedora1",
			Password: "wrong-password1",
		})

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.Equal(t, 1, user.FailedAttempts)
	})

	t.Run("account locks after repeated failures", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByUsername", mock.Anything, tenantID, "vendedora1").Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		var lastErr error
		for i := 0; i < 5; i++ {
			_, lastErr = svc.Login(context.Background(), LoginInput{
				TenantID: tenantID,
				Username: "vendedora1",
				Password: "wrong-password1",
			})
		}

		var domainErr *shared.DomainError
		require.ErrorAs(t, lastErr, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
		assert.Equal(t, identity.UserStatusLocked, user.Status)

		// Correct password is also rejected while locked
		_, err := svc.Login(context.Background(), LoginInput{
			TenantID: tenantID,
			Username: "vendedora1",
			Password: "Feria2024",
		})
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_LOCKED", domainErr.Code)
	})

	t.Run("unknown username yields the same error as a bad password", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", mock.Anything, tenantID, "nadie").Return(nil, shared.ErrNotFound)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		_, err := svc.Login(context.Background(), LoginInput{
			TenantID: tenantID,
			Username: "nadie",
			Password: "whatever1",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
	})
}

func TestAuthServiceRefreshToken(t *testing.T) {
	tenantID := uuid.New()

	t.Run("valid refresh token issues a new pair", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByUsername", mock.Anything, tenantID, "vendedora1").Return(user, nil)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		login, err := svc.Login(context.Background(), LoginInput{
			TenantID: tenantID,
			Username: "vendedora1",
			Password: "Feria2024",
		})
		require.NoError(t, err)

		refreshed, err := svc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: login.RefreshToken,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, refreshed.AccessToken)
		assert.NotEmpty(t, refreshed.RefreshToken)
	})

	t.Run("garbage refresh token is rejected", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), newTestJWTService(), nil, nil)

		_, err := svc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: "not-a-token",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "TOKEN_INVALID", domainErr.Code)
	})

	t.Run("deactivated account cannot refresh", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByUsername", mock.Anything, tenantID, "vendedora1").Return(user, nil)
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		login, err := svc.Login(context.Background(), LoginInput{
			TenantID: tenantID,
			Username: "vendedora1",
			Password: "Feria2024",
		})
		require.NoError(t, err)

		user.Status = identity.UserStatusDeactivated

		_, err = svc.RefreshToken(context.Background(), RefreshTokenInput{
			RefreshToken: login.RefreshToken,
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ACCOUNT_INACTIVE", domainErr.Code)
	})
}

func TestAuthServiceLogout(t *testing.T) {
	t.Run("logout blacklists the access token", func(t *testing.T) {
		blacklist := auth.NewInMemoryTokenBlacklist()
		svc := NewAuthService(new(MockUserRepository), newTestJWTService(), blacklist, nil)

		err := svc.Logout(context.Background(), LogoutInput{
			UserID:   uuid.New(),
			TenantID: uuid.New(),
			TokenJTI: "jti-123",
			TokenTTL: time.Minute,
		})

		require.NoError(t, err)
		revoked, err := blacklist.IsBlacklisted(context.Background(), "jti-123")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("logout without a JTI is a no-op", func(t *testing.T) {
		svc := NewAuthService(new(MockUserRepository), newTestJWTService(), auth.NewInMemoryTokenBlacklist(), nil)

		err := svc.Logout(context.Background(), LogoutInput{UserID: uuid.New()})
		require.NoError(t, err)
	})
}

func TestAuthServiceChangePassword(t *testing.T) {
	tenantID := uuid.New()

	t.Run("changes password when the old one matches", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		repo.On("Save", mock.Anything, user).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		err := svc.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "Feria2024",
			NewPassword: "NuevaClave9",
		})

		require.NoError(t, err)
		assert.True(t, user.VerifyPassword("NuevaClave9"))
		assert.False(t, user.VerifyPassword("Feria2024"))
	})

	t.Run("rejects change with a wrong current password", func(t *testing.T) {
		repo := new(MockUserRepository)
		user := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		err := svc.ChangePassword(context.Background(), ChangePasswordInput{
			UserID:      user.ID,
			OldPassword: "wrong1234",
			NewPassword: "NuevaClave9",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
		assert.True(t, user.VerifyPassword("Feria2024"))
	})
}

func TestAuthServiceRegisterUser(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates a new operator", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("FindByUsername", mock.Anything, tenantID, "nueva").Return(nil, shared.ErrNotFound)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		info, err := svc.RegisterUser(context.Background(), RegisterUserInput{
			TenantID: tenantID,
			Username: "nueva",
			Password: "ClaveSegura1",
			Role:     "operator",
		})

		require.NoError(t, err)
		assert.Equal(t, "nueva", info.Username)
		assert.Equal(t, "operator", info.Role)
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		repo := new(MockUserRepository)
		existing := newTestUser(t, tenantID, "Feria2024")
		repo.On("FindByUsername", mock.Anything, tenantID, "vendedora1").Return(existing, nil)

		svc := NewAuthService(repo, newTestJWTService(), nil, nil)

		_, err := svc.RegisterUser(context.Background(), RegisterUserInput{
			TenantID: tenantID,
			Username: "vendedora1",
			Password: "ClaveSegura1",
			Role:     "operator",
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "USERNAME_TAKEN", domainErr.Code)
	})
}
