//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/alfred/backend/internal/domain/builder"
	"github.com/alfred/backend/internal/domain/deployment"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/migration"
	"github.com/alfred/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway Postgres and applies the embedded SQL
// migrations, so the production schema is what gets tested
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("alfred_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	return db
}

func TestPostgres_SchemaMatchesRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	db := newPostgresDB(t)

	users := NewGormUserRepository(db)
	projects := NewGormProjectRepository(db)
	deployments := NewGormDeploymentRepository(db)

	user, err := identity.NewUserFromClaims("idp|pg", "pg@example.com", "Postgres")
	require.NoError(t, err)
	require.NoError(t, users.Save(ctx, user))

	found, err := users.FindByExternalID(ctx, "idp|pg")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	p, err := builder.NewProject(user.ID, "Landing", "", "static")
	require.NoError(t, err)
	_, err = p.UpsertFile("index.html", "<h1>Hi</h1>")
	require.NoError(t, err)
	require.NoError(t, projects.Save(ctx, p))

	t.Run("project names are unique per owner ignoring case", func(t *testing.T) {
		dup, err := builder.NewProject(user.ID, "LANDING", "", "static")
		require.NoError(t, err)
		assert.ErrorIs(t, projects.Save(ctx, dup), shared.ErrAlreadyExists)
	})

	t.Run("unfinished deployments are listed for resume", func(t *testing.T) {
		d := deployment.NewDeployment(user.ID, p.ID, 3, true)
		require.NoError(t, deployments.Save(ctx, d))

		pending, err := deployments.ListUnfinished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, d.ID, pending[0].ID)

		require.NoError(t, d.MarkReady("https://landing.vercel.app"))
		require.NoError(t, deployments.Save(ctx, d))

		pending, err = deployments.ListUnfinished(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})
}
