package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/feria/backend/internal/domain/identity"
	"github.com/feria/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockUserRepository creates a GormUserRepository with a mocked SQL connection
func newMockUserRepository(t *testing.T) (*GormUserRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormUserRepository(gormDB), mock, mockDB
}

func userRows(userID, tenantID uuid.UUID, username string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "version", "username", "password_hash", "role", "status", "failed_attempts"}).
		AddRow(userID, tenantID, 1, username, "$2a$12$fakehash", "operator", "active", 0)
}

func TestGormUserRepository_FindByID(t *testing.T) {
	t.Run("finds existing user", func(t *testing.T) {
		repo, mock, mockDB := newMockUserRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(userID, 1).
			WillReturnRows(userRows(userID, tenantID, "vendedora1"))

		user, err := repo.FindByID(context.Background(), userID)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, userID, user.ID)
		assert.Equal(t, identity.RoleOperator, user.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error for non-existent user", func(t *testing.T) {
		repo, mock, mockDB := newMockUserRepository(t)
		defer mockDB.Close()

		userID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(userID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.FindByID(context.Background(), userID)

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUserRepository_FindByUsername(t *testing.T) {
	t.Run("finds user by normalized username", func(t *testing.T) {
		repo, mock, mockDB := newMockUserRepository(t)
		defer mockDB.Close()

		userID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE tenant_id = \$1 AND username = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "vendedora1", 1).
			WillReturnRows(userRows(userID, tenantID, "vendedora1"))

		user, err := repo.FindByUsername(context.Background(), tenantID, "  Vendedora1 ") // mixed case with spaces

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "vendedora1", user.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown username", func(t *testing.T) {
		repo, mock, mockDB := newMockUserRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "users" WHERE tenant_id = \$1 AND username = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "ghost", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		user, err := repo.FindByUsername(context.Background(), tenantID, "ghost")

		assert.Error(t, err)
		assert.Nil(t, user)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormUserRepository_Save(t *testing.T) {
	t.Run("saves a user", func(t *testing.T) {
		repo, mock, mockDB := newMockUserRepository(t)
		defer mockDB.Close()

		user, err := identity.NewUser(uuid.New(), "vendedora1", "Str0ng!Passw0rd", identity.RoleOperator)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), user)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
