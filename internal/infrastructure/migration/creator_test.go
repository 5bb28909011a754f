package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugifyName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"create sales table", "create_sales_table"},
		{"Add-Fair-Status", "add_fair_status"},
		{"payment__records", "payment_records"},
		{"índice de ventas", "ndice_de_ventas"},
		{"trailing ", "trailing"},
		{"v2 schema", "v2_schema"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slugifyName(tt.name))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "create sales table", "sales and sale_items")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.Contains(t, mf.UpPath, "create_sales_table.up.sql")
	assert.Contains(t, mf.DownPath, "create_sales_table.down.sql")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "create sales table")
	assert.Contains(t, string(up), "sales and sale_items")
	assert.Contains(t, string(up), "UP migration")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "DOWN migration")
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db", "migrations")

	mf, err := CreateMigration(dir, "add fair status", "")
	require.NoError(t, err)

	_, err = os.Stat(mf.UpPath)
	assert.NoError(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("returns sorted pair base names", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20260102000000_add_fair_status.up.sql",
			"20260102000000_add_fair_status.down.sql",
			"20260101000000_create_sales.up.sql",
			"20260101000000_create_sales.down.sql",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 2)
		assert.Equal(t, "20260101000000_create_sales", migrations[0])
		assert.Equal(t, "20260102000000_add_fair_status", migrations[1])
	})

	t.Run("missing directory is an empty list", func(t *testing.T) {
		migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("ignores directories and stray files", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "archive.up.sql"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_create_sales.up.sql"), []byte("--"), 0644))

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, migrations, 1)
		assert.True(t, strings.HasSuffix(migrations[0], "create_sales"))
	})
}
