package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func TestExportService_Export(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	ctx := context.Background()
	later := temple()
	later.Title = "Tea ceremony"
	later.Date = day(2025, 4, 3)
	_, _, err := e.activities.Add(ctx, e.owner.ID, trip.ID, later)
	require.NoError(t, err)
	_, _, err = e.activities.Add(ctx, e.owner.ID, trip.ID, temple())
	require.NoError(t, err)

	got, rows, err := e.export.Export(ctx, e.owner.ID, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, "Japan", got.Title)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-04-02", rows[0].Day)
	assert.Equal(t, "Temple visit", rows[0].Title)
	assert.Equal(t, "2025-04-03", rows[1].Day)
	assert.Equal(t, "2025-04-01", rows[1].TripStartDate)
}

func TestExportService_EmptyTripYieldsOneRow(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)

	_, rows, err := e.export.Export(context.Background(), e.owner.ID, trip.ID)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, trip.ID.String(), rows[0].TripID)
	assert.Empty(t, rows[0].Title)
}

func TestExportService_StrangerDenied(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)

	_, _, err := e.export.Export(context.Background(), e.stranger.ID, trip.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}
