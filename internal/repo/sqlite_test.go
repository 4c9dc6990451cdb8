package repo_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/migrations"
	"github.com/pkordes/trip-planner/backend/testutil"
)

func newSQLiteRepos(t *testing.T) repo.Repos {
	return repo.NewSQLiteRepos(testutil.NewSQLite(t))
}

func TestSQLiteTripRepo(t *testing.T) {
	runTripRepoContract(t, newSQLiteRepos)
}

func TestSQLiteTripRepo_ConcurrentUpdate(t *testing.T) {
	runConcurrentUpdateContract(t, newSQLiteRepos)
}

func TestSQLiteUserRepo(t *testing.T) {
	runUserRepoContract(t, newSQLiteRepos)
}

// A file-backed database must survive being closed and reopened.
func TestOpenSQLite_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "trips.db")

	db, err := repo.OpenSQLite(path)
	require.NoError(t, err)
	provider, err := migrations.NewProvider("sqlite", db)
	require.NoError(t, err)
	_, err = provider.Up(ctx)
	require.NoError(t, err)

	r := repo.NewSQLiteRepos(db)
	owner := userFixture(t, r, "owner@example.com")
	created, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Persisted", baseTime))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := repo.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { reopened.Close() })

	got, err := repo.NewSQLiteRepos(reopened).Trips.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", got.Title)
	assert.Equal(t, domain.StatusPlanning, got.Status)
}
