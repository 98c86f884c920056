package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Leopold1975/incidents_control/internal/incidents/domain/models"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo"
	"github.com/Leopold1975/incidents_control/internal/incidents/repository/userrepo/sqlite"
	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/internal/pkg/sqlitetools"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.SQLiteDB{Path: filepath.Join(t.TempDir(), "test.db"), Reload: false}

	db, err := sqlitetools.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, sqlitetools.ApplyMigration(db, cfg))

	return db
}

func TestCreateAndGet(t *testing.T) {
	repo := sqlite.New(newTestDB(t))
	ctx := context.Background()

	id, err := repo.CreateUser(ctx, models.User{
		Email:        "rep@example.com",
		PasswordHash: "hash",
		Name:         "Reporter",
		Role:         models.RoleReporter,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	byEmail, err := repo.GetByEmail(ctx, "rep@example.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)
	require.Equal(t, "hash", byEmail.PasswordHash)
	require.Equal(t, models.RoleReporter, byEmail.Role)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, byEmail, byID)
}

func TestDuplicateEmail(t *testing.T) {
	repo := sqlite.New(newTestDB(t))
	ctx := context.Background()

	u := models.User{Email: "rep@example.com", PasswordHash: "hash", Role: models.RoleReporter}

	_, err := repo.CreateUser(ctx, u)
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, u)
	require.ErrorIs(t, err, userrepo.ErrAlreadyExists)
}

func TestNotFound(t *testing.T) {
	repo := sqlite.New(newTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, userrepo.ErrNotFound)

	_, err = repo.GetByID(ctx, 12345)
	require.ErrorIs(t, err, userrepo.ErrNotFound)
}
