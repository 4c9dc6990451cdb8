package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func TestLifecycleStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to domain.LifecycleStatus
		want     bool
	}{
		{domain.StatusPlanning, domain.StatusUpcoming, true},
		{domain.StatusPlanning, domain.StatusCompleted, true},
		{domain.StatusOngoing, domain.StatusOngoing, true},
		{domain.StatusCompleted, domain.StatusOngoing, false},
		{domain.StatusUpcoming, domain.StatusPlanning, false},
		{domain.StatusPlanning, "confirmed", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNormalizeLegacyStatus(t *testing.T) {
	tests := []struct {
		raw        string
		lifecycle  domain.LifecycleStatus
		moderation domain.ModerationStatus
	}{
		{"planning", domain.StatusPlanning, domain.ModerationNone},
		{"ongoing", domain.StatusOngoing, domain.ModerationNone},
		{"confirmed", domain.StatusPlanning, domain.ModerationConfirmed},
		{"rejected", domain.StatusPlanning, domain.ModerationRejected},
		{"", domain.StatusPlanning, domain.ModerationNone},
		{"bogus", domain.StatusPlanning, domain.ModerationNone},
	}
	for _, tc := range tests {
		l, m := domain.NormalizeLegacyStatus(tc.raw)
		assert.Equal(t, tc.lifecycle, l, tc.raw)
		assert.Equal(t, tc.moderation, m, tc.raw)
	}
}

func TestExportRows(t *testing.T) {
	trip := newTrip(t, uuid.New())

	rows := trip.ExportRows()
	assert.Len(t, rows, 1, "empty trip exports one row")
	assert.Empty(t, rows[0].Title)
	assert.Equal(t, "2025-04-01", rows[0].TripStartDate)

	_, _ = trip.AddActivity(domain.Activity{Title: "Dinner", Date: day(2025, 4, 3), StartTime: "19:00"}, trip.CreatorID, now)
	_, _ = trip.AddActivity(domain.Activity{Title: "Temple", Date: day(2025, 4, 2), StartTime: "09:00"}, trip.CreatorID, now)

	rows = trip.ExportRows()
	if assert.Len(t, rows, 2) {
		assert.Equal(t, "Temple", rows[0].Title)
		assert.Equal(t, "2025-04-02", rows[0].Day)
		assert.Equal(t, "Dinner", rows[1].Title)
	}
}

func TestNormalizeEmail(t *testing.T) {
	got, err := domain.NormalizeEmail("  Alice@Example.COM ")
	assert.NoError(t, err)
	assert.Equal(t, "alice@example.com", got)

	_, err = domain.NormalizeEmail("Alice <alice@example.com>")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = domain.NormalizeEmail("")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPaginationParams(t *testing.T) {
	p := domain.NewPaginationParams(ptr(3), ptr(500))
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 200, p.Offset())

	lo, hi := domain.NewPaginationParams(ptr(2), ptr(2)).Window(3)
	assert.Equal(t, 2, lo)
	assert.Equal(t, 3, hi)

	lo, hi = domain.NewPaginationParams(ptr(9), nil).Window(3)
	assert.Equal(t, lo, hi)
}
