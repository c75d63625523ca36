package postgres

import (
	"io"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_VersionesConUpYDown(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	for _, v := range []uint{first, next} {
		up, _, err := src.ReadUp(v)
		require.NoError(t, err, "up %d", v)
		up.Close()
		down, _, err := src.ReadDown(v)
		require.NoError(t, err, "down %d", v)
		down.Close()
	}
}

func TestMigrations_ElLibroNoDependeDelArticulo(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	defer src.Close()

	up, _, err := src.ReadUp(2)
	require.NoError(t, err)
	defer up.Close()
	body, err := io.ReadAll(up)
	require.NoError(t, err)
	assert.Contains(t, string(body), "DROP CONSTRAINT IF EXISTS inventory_transactions_item_id_fkey")
}

func TestPgx5URL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/wms", pgx5URL("postgres://u:p@db:5432/wms"))
	assert.Equal(t, "pgx5://db/wms?sslmode=disable", pgx5URL("postgresql://db/wms?sslmode=disable"))
	assert.Equal(t, "pgx5://db/wms", pgx5URL("pgx5://db/wms"))
}
