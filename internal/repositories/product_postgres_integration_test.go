//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"catalog/internal/config"
	"catalog/internal/database"
	"catalog/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// setupPostgres starts a PostgreSQL container and returns a migrated GORM handle.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		DSN:             connStr,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestProductRepository_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db := setupPostgres(t)
	factory := func(t *testing.T) repositories.ProductRepository {
		require.NoError(t, db.Exec("TRUNCATE TABLE products RESTART IDENTITY").Error)
		return repositories.NewGORMProductRepository(db)
	}

	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, factory(t)) })
	t.Run("GetNotFound", func(t *testing.T) { testGetNotFound(t, factory(t)) })
	t.Run("GetAllFilters", func(t *testing.T) { testGetAllFilters(t, factory(t)) })
	t.Run("Update", func(t *testing.T) { testUpdate(t, factory(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, factory(t)) })
	t.Run("IDsNotReused", func(t *testing.T) { testIDsNotReused(t, factory(t)) })
}
