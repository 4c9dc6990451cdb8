package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
)

// BookingService manages a trip's flight and hotel bookings.
type BookingService struct {
	store *TripStore
	fx    Effects
}

// NewBookingService constructs a BookingService.
func NewBookingService(store *TripStore, fx Effects) *BookingService {
	return &BookingService{store: store, fx: fx}
}

// ---- flights ----------------------------------------------------------------

// AddFlight books a flight on the trip and records it in the activity log.
func (s *BookingService) AddFlight(ctx context.Context, actor, tripID uuid.UUID, f domain.Flight) (domain.Flight, error) {
	var added domain.Flight
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		added, err = t.AddFlight(f, now)
		return err
	})
	if err != nil {
		return domain.Flight{}, fmt.Errorf("service.BookingService.AddFlight: %w", err)
	}
	s.fx.record(ctx, actor, domain.AuditBookFlight,
		fmt.Sprintf("trip %s: %s %s %s-%s", trip.ID, added.Airline, added.FlightNumber, added.DepartureCity, added.ArrivalCity), added.CreatedAt)
	s.fx.publish(ctx, notify.FlightAdded, trip, actor, added.ID)
	return added, nil
}

// ListFlights returns the trip's flights in booking order.
func (s *BookingService) ListFlights(ctx context.Context, actor, tripID uuid.UUID) ([]domain.Flight, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListFlights: %w", err)
	}
	if trip.Flights == nil {
		return []domain.Flight{}, nil
	}
	return trip.Flights, nil
}

// GetFlight returns one flight of the trip.
func (s *BookingService) GetFlight(ctx context.Context, actor, tripID, flightID uuid.UUID) (domain.Flight, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return domain.Flight{}, fmt.Errorf("service.BookingService.GetFlight: %w", err)
	}
	f, err := trip.Flight(flightID)
	if err != nil {
		return domain.Flight{}, fmt.Errorf("service.BookingService.GetFlight: %w", err)
	}
	return f, nil
}

// UpdateFlight applies a partial update to a flight.
func (s *BookingService) UpdateFlight(ctx context.Context, actor, tripID, flightID uuid.UUID, p domain.FlightPatch) (domain.Flight, error) {
	var updated domain.Flight
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		updated, err = t.UpdateFlight(flightID, p, now)
		return err
	})
	if err != nil {
		return domain.Flight{}, fmt.Errorf("service.BookingService.UpdateFlight: %w", err)
	}
	s.fx.publish(ctx, notify.FlightUpdated, trip, actor, flightID)
	return updated, nil
}

// DeleteFlight removes a flight from the trip.
func (s *BookingService) DeleteFlight(ctx context.Context, actor, tripID, flightID uuid.UUID) error {
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		return t.DeleteFlight(flightID, now)
	})
	if err != nil {
		return fmt.Errorf("service.BookingService.DeleteFlight: %w", err)
	}
	s.fx.publish(ctx, notify.FlightDeleted, trip, actor, flightID)
	return nil
}

// ---- hotels -----------------------------------------------------------------

// AddHotel books a hotel stay on the trip and records it in the activity log.
func (s *BookingService) AddHotel(ctx context.Context, actor, tripID uuid.UUID, h domain.Hotel) (domain.Hotel, error) {
	var added domain.Hotel
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		added, err = t.AddHotel(h, now)
		return err
	})
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.BookingService.AddHotel: %w", err)
	}
	s.fx.record(ctx, actor, domain.AuditBookHotel,
		fmt.Sprintf("trip %s: %s, %s", trip.ID, added.Name, added.Location), added.CreatedAt)
	s.fx.publish(ctx, notify.HotelAdded, trip, actor, added.ID)
	return added, nil
}

// ListHotels returns the trip's hotel stays in booking order.
func (s *BookingService) ListHotels(ctx context.Context, actor, tripID uuid.UUID) ([]domain.Hotel, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return nil, fmt.Errorf("service.BookingService.ListHotels: %w", err)
	}
	if trip.Hotels == nil {
		return []domain.Hotel{}, nil
	}
	return trip.Hotels, nil
}

// GetHotel returns one hotel stay of the trip.
func (s *BookingService) GetHotel(ctx context.Context, actor, tripID, hotelID uuid.UUID) (domain.Hotel, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.BookingService.GetHotel: %w", err)
	}
	h, err := trip.Hotel(hotelID)
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.BookingService.GetHotel: %w", err)
	}
	return h, nil
}

// UpdateHotel applies a partial update to a hotel stay.
func (s *BookingService) UpdateHotel(ctx context.Context, actor, tripID, hotelID uuid.UUID, p domain.HotelPatch) (domain.Hotel, error) {
	var updated domain.Hotel
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		updated, err = t.UpdateHotel(hotelID, p, now)
		return err
	})
	if err != nil {
		return domain.Hotel{}, fmt.Errorf("service.BookingService.UpdateHotel: %w", err)
	}
	s.fx.publish(ctx, notify.HotelUpdated, trip, actor, hotelID)
	return updated, nil
}

// DeleteHotel removes a hotel stay from the trip.
func (s *BookingService) DeleteHotel(ctx context.Context, actor, tripID, hotelID uuid.UUID) error {
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		return t.DeleteHotel(hotelID, now)
	})
	if err != nil {
		return fmt.Errorf("service.BookingService.DeleteHotel: %w", err)
	}
	s.fx.publish(ctx, notify.HotelDeleted, trip, actor, hotelID)
	return nil
}
