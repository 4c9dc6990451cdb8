package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
)

func TestAdminService_RequiresAdmin(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	ctx := context.Background()
	page := domain.NewPaginationParams(nil, nil)

	_, _, err := e.admin.ListTrips(ctx, e.owner.ID, page)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, _, err = e.admin.ListUsers(ctx, e.owner.ID, page)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.admin.Statistics(ctx, e.owner.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.admin.RecentActivity(ctx, e.owner.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.admin.Moderate(ctx, e.owner.ID, trip.ID, domain.ModerationConfirmed)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.admin.UpdateUser(ctx, e.owner.ID, e.friend.ID, domain.UserPatch{Role: ptr(domain.UserRoleAdmin)})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	err = e.admin.DeleteUser(ctx, e.owner.ID, e.friend.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.admin.Statistics(ctx, uuid.Nil)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAdminService_UpdateUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.admin.UpdateUser(ctx, e.adminUser.ID, e.friend.ID, domain.UserPatch{
		Name: ptr("  Best Friend "),
		Role: ptr(domain.UserRoleAdmin),
	})
	require.NoError(t, err)
	assert.Equal(t, "Best Friend", u.Name)
	assert.Equal(t, domain.UserRoleAdmin, u.Role)
	assert.Empty(t, u.PasswordHash)

	// The promoted account passes the stored-role check straight away.
	_, err = e.admin.Statistics(ctx, e.friend.ID)
	assert.NoError(t, err)

	// And a demoted one loses access even though its token may still say admin.
	_, err = e.admin.UpdateUser(ctx, e.adminUser.ID, e.friend.ID, domain.UserPatch{Role: ptr(domain.UserRoleUser)})
	require.NoError(t, err)
	_, err = e.admin.Statistics(ctx, e.friend.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestAdminService_UpdateUser_Rejections(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.admin.UpdateUser(ctx, e.adminUser.ID, e.friend.ID, domain.UserPatch{Role: ptr(domain.UserRole("root"))})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.admin.UpdateUser(ctx, e.adminUser.ID, e.friend.ID, domain.UserPatch{Name: ptr(" ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.admin.UpdateUser(ctx, e.adminUser.ID, e.adminUser.ID, domain.UserPatch{Role: ptr(domain.UserRoleUser)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.admin.UpdateUser(ctx, e.adminUser.ID, uuid.New(), domain.UserPatch{Name: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminService_DeleteUser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	trip := e.japanTrip(t)

	require.NoError(t, e.admin.DeleteUser(ctx, e.adminUser.ID, e.owner.ID))

	_, err := e.repos.Users.GetByID(ctx, e.owner.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.trips.Get(ctx, e.adminUser.ID, trip.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "the deleted user's trips go with them")

	assert.ErrorIs(t, e.admin.DeleteUser(ctx, e.adminUser.ID, e.owner.ID), domain.ErrNotFound)
	assert.ErrorIs(t, e.admin.DeleteUser(ctx, e.adminUser.ID, e.adminUser.ID), domain.ErrValidation)
}

func TestAdminService_ListTrips(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	e.join(t, trip.ID, e.friend, domain.RoleEditor)
	_, _, err := e.activities.Add(context.Background(), e.owner.ID, trip.ID, temple())
	require.NoError(t, err)

	got, total, err := e.admin.ListTrips(context.Background(), e.adminUser.ID, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, trip.ID, got[0].ID)
	assert.Equal(t, "owner@example.com", got[0].Creator.Email)
	assert.Equal(t, 1, got[0].ActivityCount)
	assert.Equal(t, 1, got[0].CollaboratorCount)
}

func TestAdminService_ListUsers_ClearsHashes(t *testing.T) {
	e := newEnv(t)

	users, total, err := e.admin.ListUsers(context.Background(), e.adminUser.ID, domain.NewPaginationParams(nil, nil))

	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash, u.Email)
	}
}

func TestAdminService_Statistics(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	empty, err := e.admin.Statistics(ctx, e.adminUser.ID)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalTrips)
	assert.NotNil(t, empty.MonthlyTrend)

	first := e.japanTrip(t)
	e.japanTrip(t)
	_, err = e.trips.Update(ctx, e.owner.ID, first.ID, domain.TripPatch{Status: ptr(domain.StatusOngoing)})
	require.NoError(t, err)

	stats, err := e.admin.Statistics(ctx, e.adminUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalTrips)
	assert.Equal(t, 1, stats.OngoingTrips)
	assert.Zero(t, stats.CompletedTrips)
	require.Len(t, stats.MonthlyTrend, 1)
	assert.Equal(t, 2, stats.MonthlyTrend[0].Count)
}

func TestAdminService_Moderate(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	ctx := context.Background()

	moderated, err := e.admin.Moderate(ctx, e.adminUser.ID, trip.ID, domain.ModerationRejected)

	require.NoError(t, err)
	assert.Equal(t, domain.ModerationRejected, moderated.ModerationStatus)
	assert.Equal(t, domain.StatusPlanning, moderated.Status, "lifecycle untouched")
	assert.Contains(t, e.events.types(), notify.TripModerated)

	_, err = e.admin.Moderate(ctx, e.adminUser.ID, trip.ID, domain.ModerationNone)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = e.admin.Moderate(ctx, e.adminUser.ID, uuid.New(), domain.ModerationConfirmed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAdminService_RecentActivity(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	_, _, err := e.activities.Add(context.Background(), e.owner.ID, trip.ID, temple())
	require.NoError(t, err)

	entries, err := e.admin.RecentActivity(context.Background(), e.adminUser.ID)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditBookActivity, entries[0].Action)
	assert.Equal(t, domain.AuditBookTrip, entries[1].Action)
	assert.Equal(t, "owner@example.com", entries[0].UserEmail)
}
