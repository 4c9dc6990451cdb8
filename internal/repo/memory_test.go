package repo_test

import (
	"testing"

	"github.com/pkordes/trip-planner/backend/internal/repo"
)

func newMemoryRepos(*testing.T) repo.Repos { return repo.NewMemoryRepos() }

func TestMemoryTripRepo(t *testing.T) {
	runTripRepoContract(t, newMemoryRepos)
}

func TestMemoryTripRepo_ConcurrentUpdate(t *testing.T) {
	runConcurrentUpdateContract(t, newMemoryRepos)
}

func TestMemoryUserRepo(t *testing.T) {
	runUserRepoContract(t, newMemoryRepos)
}
