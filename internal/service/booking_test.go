package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func nh101() domain.Flight {
	return domain.Flight{
		Airline:       "ANA",
		FlightNumber:  "NH101",
		DepartureCity: "San Francisco",
		ArrivalCity:   "Tokyo",
		DepartureTime: time.Date(2025, 3, 31, 11, 0, 0, 0, time.UTC),
		ArrivalTime:   time.Date(2025, 4, 1, 4, 0, 0, 0, time.UTC),
		Cost:          900,
	}
}

func TestBookingService_Flights(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	ctx := context.Background()

	added, err := e.bookings.AddFlight(ctx, e.owner.ID, trip.ID, nh101())
	require.NoError(t, err)
	assert.Equal(t, domain.ItemPending, added.Status)

	got, err := e.bookings.GetFlight(ctx, e.owner.ID, trip.ID, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "NH101", got.FlightNumber)

	updated, err := e.bookings.UpdateFlight(ctx, e.owner.ID, trip.ID, added.ID, domain.FlightPatch{
		Status: ptr(domain.ItemConfirmed), BookingReference: ptr("ABC123"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemConfirmed, updated.Status)
	assert.Equal(t, "ABC123", updated.BookingReference)

	_, err = e.bookings.UpdateFlight(ctx, e.owner.ID, trip.ID, added.ID, domain.FlightPatch{Status: ptr(domain.ItemPending)})
	assert.ErrorIs(t, err, domain.ErrValidation, "confirmed is terminal")

	require.NoError(t, e.bookings.DeleteFlight(ctx, e.owner.ID, trip.ID, added.ID))
	flights, err := e.bookings.ListFlights(ctx, e.owner.ID, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, flights)

	log, err := e.repos.Audit.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.AuditBookFlight, log[0].Action)
}

func TestBookingService_AddFlight_Invalid(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	f := nh101()
	f.ArrivalTime = f.DepartureTime.Add(-time.Hour)

	_, err := e.bookings.AddFlight(context.Background(), e.owner.ID, trip.ID, f)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBookingService_Hotels(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	e.join(t, trip.ID, e.friend, domain.RoleViewer)
	ctx := context.Background()

	added, err := e.bookings.AddHotel(ctx, e.friend.ID, trip.ID, domain.Hotel{
		Name: "Park Hyatt", Location: "Tokyo", CheckIn: day(2025, 4, 1), CheckOut: day(2025, 4, 4), Cost: 1200,
	})
	require.NoError(t, err)

	hotels, err := e.bookings.ListHotels(ctx, e.owner.ID, trip.ID)
	require.NoError(t, err)
	require.Len(t, hotels, 1)
	assert.Equal(t, added.ID, hotels[0].ID)

	_, err = e.bookings.UpdateHotel(ctx, e.owner.ID, trip.ID, added.ID, domain.HotelPatch{CheckOut: ptr(day(2025, 3, 30))})
	assert.ErrorIs(t, err, domain.ErrValidation)

	updated, err := e.bookings.UpdateHotel(ctx, e.owner.ID, trip.ID, added.ID, domain.HotelPatch{Notes: ptr("late check-in")})
	require.NoError(t, err)
	assert.Equal(t, "late check-in", updated.Notes)

	_, err = e.bookings.GetHotel(ctx, e.stranger.ID, trip.ID, added.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, e.bookings.DeleteHotel(ctx, e.owner.ID, trip.ID, added.ID))
	_, err = e.bookings.GetHotel(ctx, e.owner.ID, trip.ID, added.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestChatService(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	e.join(t, trip.ID, e.friend, domain.RoleViewer)
	ctx := context.Background()

	first, err := e.chat.Post(ctx, e.owner.ID, trip.ID, "  Who books the ryokan?  ")
	require.NoError(t, err)
	assert.Equal(t, "Who books the ryokan?", first.Content)
	assert.Equal(t, e.owner.ID, first.SenderID)
	assert.False(t, first.Timestamp.IsZero())

	_, err = e.chat.Post(ctx, e.friend.ID, trip.ID, "I will")
	require.NoError(t, err)

	_, err = e.chat.Post(ctx, e.friend.ID, trip.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	msgs, err := e.chat.List(ctx, e.friend.ID, trip.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "I will", msgs[1].Content)
}

// A stranger's chat post is forbidden and leaves the log untouched.
func TestChatService_StrangerPost(t *testing.T) {
	e := newEnv(t)
	trip := e.japanTrip(t)
	ctx := context.Background()
	_, err := e.chat.Post(ctx, e.owner.ID, trip.ID, "hello")
	require.NoError(t, err)

	_, err = e.chat.Post(ctx, e.stranger.ID, trip.ID, "let me in")

	assert.ErrorIs(t, err, domain.ErrForbidden)
	msgs, err := e.chat.List(ctx, e.owner.ID, trip.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
