package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func flightFixture() domain.Flight {
	dep := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	return domain.Flight{
		Airline:       "ANA",
		FlightNumber:  "NH7",
		DepartureCity: "San Francisco",
		ArrivalCity:   "Tokyo",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(11 * time.Hour),
		Cost:          900,
	}
}

func hotelFixture() domain.Hotel {
	return domain.Hotel{
		Name:     "Park Hyatt",
		Location: "Shinjuku",
		CheckIn:  day(2025, 4, 1),
		CheckOut: day(2025, 4, 4),
		Cost:     1200,
	}
}

func TestAddFlight(t *testing.T) {
	trip := newTrip(t, uuid.New())

	f, err := trip.AddFlight(flightFixture(), now)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, f.ID)
	assert.Equal(t, domain.ItemPending, f.Status)
	got, err := trip.Flight(f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)
	assert.Empty(t, trip.Itinerary(), "flights are not itinerary entries")
}

func TestAddFlight_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*domain.Flight)
		field string
	}{
		{"missing airline", func(f *domain.Flight) { f.Airline = " " }, "airline"},
		{"missing arrival city", func(f *domain.Flight) { f.ArrivalCity = "" }, "arrival_city"},
		{"missing departure", func(f *domain.Flight) { f.DepartureTime = time.Time{} }, "departure_time"},
		{"arrives before departing", func(f *domain.Flight) { f.ArrivalTime = f.DepartureTime.Add(-time.Hour) }, "arrival_time"},
		{"negative cost", func(f *domain.Flight) { f.Cost = -1 }, "cost"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			trip := newTrip(t, uuid.New())
			in := flightFixture()
			tc.edit(&in)

			_, err := trip.AddFlight(in, now)

			var fe *domain.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tc.field, fe.Field)
			assert.Empty(t, trip.Flights)
		})
	}
}

func TestUpdateFlight_StatusMachine(t *testing.T) {
	trip := newTrip(t, uuid.New())
	f, err := trip.AddFlight(flightFixture(), now)
	require.NoError(t, err)

	got, err := trip.UpdateFlight(f.ID, domain.FlightPatch{Status: ptr(domain.ItemRejected), Cost: ptr(950.0)}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemRejected, got.Status)
	assert.Equal(t, 950.0, got.Cost)

	_, err = trip.UpdateFlight(f.ID, domain.FlightPatch{Status: ptr(domain.ItemConfirmed)}, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteFlight(t *testing.T) {
	trip := newTrip(t, uuid.New())
	f, err := trip.AddFlight(flightFixture(), now)
	require.NoError(t, err)

	require.NoError(t, trip.DeleteFlight(f.ID, now))

	assert.Empty(t, trip.Flights)
	_, err = trip.Flight(f.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHotel_Lifecycle(t *testing.T) {
	trip := newTrip(t, uuid.New())

	h, err := trip.AddHotel(hotelFixture(), now)
	require.NoError(t, err)

	_, err = trip.UpdateHotel(h.ID, domain.HotelPatch{CheckOut: ptr(day(2025, 3, 30))}, now)
	var fe *domain.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "check_out", fe.Field)

	got, err := trip.UpdateHotel(h.ID, domain.HotelPatch{Notes: ptr("late check-in"), Status: ptr(domain.ItemConfirmed)}, now)
	require.NoError(t, err)
	assert.Equal(t, "late check-in", got.Notes)
	assert.Equal(t, day(2025, 4, 4), got.CheckOut, "failed patch left the hotel untouched")

	require.NoError(t, trip.DeleteHotel(h.ID, now))
	assert.ErrorIs(t, trip.DeleteHotel(h.ID, now), domain.ErrNotFound)
}

func TestPostMessage(t *testing.T) {
	trip := newTrip(t, uuid.New())

	m, err := trip.PostMessage(trip.CreatorID, "  see you at Narita  ", now)
	require.NoError(t, err)
	assert.Equal(t, "see you at Narita", m.Content)
	assert.Equal(t, now, m.Timestamp)

	_, err = trip.PostMessage(trip.CreatorID, "   ", now)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, trip.Messages, 1)
}
