package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// The contract tests below run against every store implementation. Each
// store's test file supplies a constructor returning fresh, empty repos.

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func userFixture(t *testing.T, r repo.Repos, email string) domain.User {
	t.Helper()
	u, err := r.Users.Create(context.Background(), domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Test " + email,
		PasswordHash: "$2a$10$hash",
		Role:         domain.UserRoleUser,
		CreatedAt:    baseTime,
	})
	require.NoError(t, err)
	return u
}

// tripFixture returns a valid, not yet persisted trip owned by creator.
func tripFixture(t *testing.T, creator uuid.UUID, title string, start time.Time) domain.Trip {
	t.Helper()
	trip, err := domain.NewTrip(creator, domain.Trip{
		Title:        title,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 7),
		Destinations: []string{"Tokyo"},
	}, baseTime)
	require.NoError(t, err)
	return trip
}

func runTripRepoContract(t *testing.T, newRepos func(t *testing.T) repo.Repos) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		trip := tripFixture(t, owner.ID, "Japan", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
		_, err := trip.AddActivity(domain.Activity{Title: "Temple", Date: trip.StartDate.AddDate(0, 0, 1), StartTime: "09:00"}, owner.ID, baseTime)
		require.NoError(t, err)

		created, err := r.Trips.Create(ctx, trip)
		require.NoError(t, err)
		assert.EqualValues(t, 1, created.Version)

		got, err := r.Trips.GetByID(ctx, trip.ID)
		require.NoError(t, err)
		assert.Equal(t, "Japan", got.Title)
		assert.EqualValues(t, 1, got.Version)
		require.Len(t, got.Activities, 1)
		plans := got.Itinerary()
		require.Len(t, plans, 1)
		assert.Equal(t, "2025-04-02", domain.DayKey(plans[0].Date))
		assert.Equal(t, "Temple", plans[0].Activities[0].Title)
	})

	t.Run("GetNotFound", func(t *testing.T) {
		r := newRepos(t)

		_, err := r.Trips.GetByID(ctx, uuid.New())

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("CreateRejectsInvertedDates", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		trip := tripFixture(t, owner.ID, "Backwards", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
		trip.EndDate = trip.StartDate.AddDate(0, 0, -1)

		_, err := r.Trips.Create(ctx, trip)

		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = r.Trips.GetByID(ctx, trip.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound, "nothing persisted")
	})

	t.Run("UpdateBumpsVersion", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		created, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Japan", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		created.Title = "Japan 2025"
		updated, err := r.Trips.Update(ctx, created)
		require.NoError(t, err)
		assert.EqualValues(t, 2, updated.Version)

		got, err := r.Trips.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Japan 2025", got.Title)
		assert.EqualValues(t, 2, got.Version)
	})

	t.Run("UpdateStaleVersionConflicts", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		created, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Japan", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		first := created
		first.Title = "first writer"
		_, err = r.Trips.Update(ctx, first)
		require.NoError(t, err)

		second := created
		second.Title = "second writer"
		_, err = r.Trips.Update(ctx, second)

		assert.ErrorIs(t, err, domain.ErrConflict)
		got, _ := r.Trips.GetByID(ctx, created.ID)
		assert.Equal(t, "first writer", got.Title)
	})

	t.Run("UpdateRejectsInvertedDates", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		created, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Japan", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		created.EndDate = created.StartDate.AddDate(0, 0, -3)
		_, err = r.Trips.Update(ctx, created)

		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("UpdateMissingTrip", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		trip := tripFixture(t, owner.ID, "Ghost", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
		trip.Version = 1

		_, err := r.Trips.Update(ctx, trip)

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		created, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Japan", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)

		require.NoError(t, r.Trips.Delete(ctx, created.ID))

		_, err = r.Trips.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, r.Trips.Delete(ctx, created.ID), domain.ErrNotFound)
	})

	t.Run("ListForUserAndInvitations", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		friend := userFixture(t, r, "friend@example.com")

		later, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Later", time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, err)
		earlier := tripFixture(t, owner.ID, "Earlier", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
		_, err = earlier.Invite(friend.ID, domain.RoleEditor, baseTime)
		require.NoError(t, err)
		earlier, err = r.Trips.Create(ctx, earlier)
		require.NoError(t, err)

		trips, total, err := r.Trips.ListForUser(ctx, owner.ID, domain.NewPaginationParams(nil, nil))
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, trips, 2)
		assert.Equal(t, "Earlier", trips[0].Title)
		assert.Equal(t, "Later", trips[1].Title)

		_, total, err = r.Trips.ListForUser(ctx, friend.ID, domain.NewPaginationParams(nil, nil))
		require.NoError(t, err)
		assert.Zero(t, total, "pending invitees are not members")

		invites, err := r.Trips.ListInvitations(ctx, friend.ID)
		require.NoError(t, err)
		require.Len(t, invites, 1)
		assert.Equal(t, earlier.ID, invites[0].ID)

		_, err = earlier.Respond(friend.ID, true, baseTime)
		require.NoError(t, err)
		_, err = r.Trips.Update(ctx, earlier)
		require.NoError(t, err)

		trips, total, err = r.Trips.ListForUser(ctx, friend.ID, domain.NewPaginationParams(nil, nil))
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, trips, 1)
		assert.Equal(t, earlier.ID, trips[0].ID)
		invites, err = r.Trips.ListInvitations(ctx, friend.ID)
		require.NoError(t, err)
		assert.Empty(t, invites)

		limit := 1
		page, total, err := r.Trips.ListForUser(ctx, owner.ID, domain.NewPaginationParams(ptr(2), &limit))
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, page, 1)
		assert.Equal(t, later.ID, page[0].ID)
	})

	t.Run("ListAllAndStatistics", func(t *testing.T) {
		r := newRepos(t)
		owner := userFixture(t, r, "owner@example.com")
		for i, status := range []domain.LifecycleStatus{domain.StatusPlanning, domain.StatusOngoing, domain.StatusOngoing, domain.StatusCompleted} {
			trip := tripFixture(t, owner.ID, "Trip", time.Date(2025, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC))
			trip.Status = status
			trip.CreatedAt = time.Date(2025, time.Month(1+i/2), 10, 0, 0, 0, 0, time.UTC)
			_, err := r.Trips.Create(ctx, trip)
			require.NoError(t, err)
		}

		all, total, err := r.Trips.ListAll(ctx, domain.NewPaginationParams(nil, nil))
		require.NoError(t, err)
		assert.EqualValues(t, 4, total)
		require.Len(t, all, 4)
		assert.True(t, all[0].StartDate.After(all[3].StartDate), "newest start date first")

		n, err := r.Trips.CountByStatus(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 4, n)
		n, err = r.Trips.CountByStatus(ctx, domain.StatusOngoing)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		months, err := r.Trips.CountByMonth(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.MonthlyCount{
			{Month: "Jan", Year: 2025, Count: 2},
			{Month: "Feb", Year: 2025, Count: 2},
		}, months)
	})
}

// runConcurrentUpdateContract races several writers holding the same version.
// Exactly one may win. Stores backed by a single transaction cannot run it.
func runConcurrentUpdateContract(t *testing.T, newRepos func(t *testing.T) repo.Repos) {
	ctx := context.Background()
	r := newRepos(t)
	owner := userFixture(t, r, "owner@example.com")
	created, err := r.Trips.Create(ctx, tripFixture(t, owner.ID, "Japan", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	const writers = 4
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mine := created.Clone()
			mine.Title = "writer"
			if _, err := r.Trips.Update(ctx, mine); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrConflict)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func runUserRepoContract(t *testing.T, newRepos func(t *testing.T) repo.Repos) {
	ctx := context.Background()

	t.Run("CreateAndLookup", func(t *testing.T) {
		r := newRepos(t)
		u := userFixture(t, r, "alice@example.com")

		byID, err := r.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", byID.Email)
		assert.Equal(t, domain.UserRoleUser, byID.Role)
		assert.Nil(t, byID.LastLoginAt)

		byEmail, err := r.Users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		_, err = r.Users.GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		r := newRepos(t)
		userFixture(t, r, "alice@example.com")

		_, err := r.Users.Create(ctx, domain.User{
			ID: uuid.New(), Email: "alice@example.com", Name: "Other", PasswordHash: "x",
			Role: domain.UserRoleUser, CreatedAt: baseTime,
		})

		var fe *domain.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "email", fe.Field)
	})

	t.Run("TouchLoginAndList", func(t *testing.T) {
		r := newRepos(t)
		a := userFixture(t, r, "a@example.com")
		b := userFixture(t, r, "b@example.com")
		at := baseTime.Add(time.Hour)

		require.NoError(t, r.Users.TouchLogin(ctx, a.ID, at))
		assert.ErrorIs(t, r.Users.TouchLogin(ctx, uuid.New(), at), domain.ErrNotFound)

		got, err := r.Users.GetByID(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.True(t, got.LastLoginAt.Equal(at))

		users, total, err := r.Users.List(ctx, domain.NewPaginationParams(nil, nil))
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, users, 2)

		some, err := r.Users.GetByIDs(ctx, []uuid.UUID{b.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, some, 1)
		assert.Equal(t, b.ID, some[0].ID)
	})

	t.Run("Update", func(t *testing.T) {
		r := newRepos(t)
		u := userFixture(t, r, "alice@example.com")
		u.Name = "Alice Admin"
		u.Role = domain.UserRoleAdmin
		u.PasswordHash = "$2a$10$other"
		u.Email = "ignored@example.com"

		updated, err := r.Users.Update(ctx, u)
		require.NoError(t, err)
		assert.Equal(t, "Alice Admin", updated.Name)
		assert.Equal(t, domain.UserRoleAdmin, updated.Role)
		assert.Equal(t, "alice@example.com", updated.Email, "email is not writable")

		got, err := r.Users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "$2a$10$other", got.PasswordHash)

		_, err = r.Users.Update(ctx, domain.User{ID: uuid.New(), Name: "x", Role: domain.UserRoleUser})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("DeleteCascades", func(t *testing.T) {
		r := newRepos(t)
		gone := userFixture(t, r, "gone@example.com")
		kept := userFixture(t, r, "kept@example.com")
		start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
		goneTrip, err := r.Trips.Create(ctx, tripFixture(t, gone.ID, "Gone", start))
		require.NoError(t, err)
		keptTrip, err := r.Trips.Create(ctx, tripFixture(t, kept.ID, "Kept", start))
		require.NoError(t, err)
		for _, id := range []uuid.UUID{gone.ID, kept.ID} {
			require.NoError(t, r.Audit.Record(ctx, domain.AuditEntry{
				ID: uuid.New(), UserID: id, Action: domain.AuditBookTrip, CreatedAt: baseTime,
			}))
		}

		require.NoError(t, r.Users.Delete(ctx, gone.ID))

		_, err = r.Users.GetByID(ctx, gone.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = r.Trips.GetByID(ctx, goneTrip.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = r.Trips.GetByID(ctx, keptTrip.ID)
		assert.NoError(t, err)
		recent, err := r.Audit.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, kept.ID, recent[0].UserID)

		assert.ErrorIs(t, r.Users.Delete(ctx, gone.ID), domain.ErrNotFound)
	})

	t.Run("AuditLog", func(t *testing.T) {
		r := newRepos(t)
		u := userFixture(t, r, "alice@example.com")
		for i, action := range []domain.AuditAction{domain.AuditBookTrip, domain.AuditBookFlight, domain.AuditBookHotel} {
			require.NoError(t, r.Audit.Record(ctx, domain.AuditEntry{
				ID:        uuid.New(),
				UserID:    u.ID,
				Action:    action,
				Details:   "details",
				CreatedAt: baseTime.Add(time.Duration(i) * time.Minute),
			}))
		}

		recent, err := r.Audit.Recent(ctx, 2)

		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, domain.AuditBookHotel, recent[0].Action)
		assert.Equal(t, domain.AuditBookFlight, recent[1].Action)
		assert.Equal(t, "alice@example.com", recent[0].UserEmail)
	})
}

func ptr[T any](v T) *T { return &v }
