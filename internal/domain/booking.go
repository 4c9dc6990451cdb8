package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flight is a flight booking attached to a trip. Flights are not part of the
// itinerary projection.
type Flight struct {
	ID               uuid.UUID  `json:"id"`
	Airline          string     `json:"airline"`
	FlightNumber     string     `json:"flight_number"`
	DepartureCity    string     `json:"departure_city"`
	ArrivalCity      string     `json:"arrival_city"`
	DepartureTime    time.Time  `json:"departure_time"`
	ArrivalTime      time.Time  `json:"arrival_time"`
	BookingReference string     `json:"booking_reference,omitempty"`
	Cost             float64    `json:"cost"`
	Status           ItemStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FlightPatch is a partial update of a flight.
type FlightPatch struct {
	Airline          *string
	FlightNumber     *string
	DepartureCity    *string
	ArrivalCity      *string
	DepartureTime    *time.Time
	ArrivalTime      *time.Time
	BookingReference *string
	Cost             *float64
	Status           *ItemStatus
}

// Hotel is an accommodation booking attached to a trip.
type Hotel struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Location         string     `json:"location"`
	CheckIn          time.Time  `json:"check_in"`
	CheckOut         time.Time  `json:"check_out"`
	RoomType         string     `json:"room_type,omitempty"`
	BookingReference string     `json:"booking_reference,omitempty"`
	Cost             float64    `json:"cost"`
	Amenities        string     `json:"amenities,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	Status           ItemStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HotelPatch is a partial update of a hotel.
type HotelPatch struct {
	Name             *string
	Location         *string
	CheckIn          *time.Time
	CheckOut         *time.Time
	RoomType         *string
	BookingReference *string
	Cost             *float64
	Amenities        *string
	Notes            *string
	Status           *ItemStatus
}

// AddFlight appends a new pending flight to the trip.
func (t *Trip) AddFlight(f Flight, now time.Time) (Flight, error) {
	f.ID = uuid.New()
	f.CreatedAt = now
	f.UpdatedAt = now
	if f.Status == "" {
		f.Status = ItemPending
	}
	if f.Status != ItemPending {
		return Flight{}, Invalid("status", "new flights start as pending")
	}
	if err := validateFlight(&f); err != nil {
		return Flight{}, err
	}
	t.Flights = append(t.Flights, f)
	t.UpdatedAt = now
	return f, nil
}

// Flight returns the flight with the given id.
func (t Trip) Flight(id uuid.UUID) (Flight, error) {
	i := slices.IndexFunc(t.Flights, func(f Flight) bool { return f.ID == id })
	if i < 0 {
		return Flight{}, fmt.Errorf("flight %s: %w", id, ErrNotFound)
	}
	return t.Flights[i], nil
}

// UpdateFlight merges p into the flight with the given id.
func (t *Trip) UpdateFlight(id uuid.UUID, p FlightPatch, now time.Time) (Flight, error) {
	i := slices.IndexFunc(t.Flights, func(f Flight) bool { return f.ID == id })
	if i < 0 {
		return Flight{}, fmt.Errorf("flight %s: %w", id, ErrNotFound)
	}
	f := t.Flights[i]
	setString(&f.Airline, p.Airline)
	setString(&f.FlightNumber, p.FlightNumber)
	setString(&f.DepartureCity, p.DepartureCity)
	setString(&f.ArrivalCity, p.ArrivalCity)
	setString(&f.BookingReference, p.BookingReference)
	if p.DepartureTime != nil {
		f.DepartureTime = *p.DepartureTime
	}
	if p.ArrivalTime != nil {
		f.ArrivalTime = *p.ArrivalTime
	}
	if p.Cost != nil {
		f.Cost = *p.Cost
	}
	if p.Status != nil {
		if err := checkItemTransition("status", f.Status, *p.Status); err != nil {
			return Flight{}, err
		}
		f.Status = *p.Status
	}
	if err := validateFlight(&f); err != nil {
		return Flight{}, err
	}
	f.UpdatedAt = now
	t.Flights[i] = f
	t.UpdatedAt = now
	return f, nil
}

// DeleteFlight removes the flight with the given id.
func (t *Trip) DeleteFlight(id uuid.UUID, now time.Time) error {
	i := slices.IndexFunc(t.Flights, func(f Flight) bool { return f.ID == id })
	if i < 0 {
		return fmt.Errorf("flight %s: %w", id, ErrNotFound)
	}
	t.Flights = slices.Delete(t.Flights, i, i+1)
	t.UpdatedAt = now
	return nil
}

// AddHotel appends a new pending hotel to the trip.
func (t *Trip) AddHotel(h Hotel, now time.Time) (Hotel, error) {
	h.ID = uuid.New()
	h.CreatedAt = now
	h.UpdatedAt = now
	if h.Status == "" {
		h.Status = ItemPending
	}
	if h.Status != ItemPending {
		return Hotel{}, Invalid("status", "new hotels start as pending")
	}
	if err := validateHotel(&h); err != nil {
		return Hotel{}, err
	}
	t.Hotels = append(t.Hotels, h)
	t.UpdatedAt = now
	return h, nil
}

// Hotel returns the hotel with the given id.
func (t Trip) Hotel(id uuid.UUID) (Hotel, error) {
	i := slices.IndexFunc(t.Hotels, func(h Hotel) bool { return h.ID == id })
	if i < 0 {
		return Hotel{}, fmt.Errorf("hotel %s: %w", id, ErrNotFound)
	}
	return t.Hotels[i], nil
}

// UpdateHotel merges p into the hotel with the given id.
func (t *Trip) UpdateHotel(id uuid.UUID, p HotelPatch, now time.Time) (Hotel, error) {
	i := slices.IndexFunc(t.Hotels, func(h Hotel) bool { return h.ID == id })
	if i < 0 {
		return Hotel{}, fmt.Errorf("hotel %s: %w", id, ErrNotFound)
	}
	h := t.Hotels[i]
	setString(&h.Name, p.Name)
	setString(&h.Location, p.Location)
	setString(&h.RoomType, p.RoomType)
	setString(&h.BookingReference, p.BookingReference)
	setString(&h.Amenities, p.Amenities)
	setString(&h.Notes, p.Notes)
	if p.CheckIn != nil {
		h.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		h.CheckOut = *p.CheckOut
	}
	if p.Cost != nil {
		h.Cost = *p.Cost
	}
	if p.Status != nil {
		if err := checkItemTransition("status", h.Status, *p.Status); err != nil {
			return Hotel{}, err
		}
		h.Status = *p.Status
	}
	if err := validateHotel(&h); err != nil {
		return Hotel{}, err
	}
	h.UpdatedAt = now
	t.Hotels[i] = h
	t.UpdatedAt = now
	return h, nil
}

// DeleteHotel removes the hotel with the given id.
func (t *Trip) DeleteHotel(id uuid.UUID, now time.Time) error {
	i := slices.IndexFunc(t.Hotels, func(h Hotel) bool { return h.ID == id })
	if i < 0 {
		return fmt.Errorf("hotel %s: %w", id, ErrNotFound)
	}
	t.Hotels = slices.Delete(t.Hotels, i, i+1)
	t.UpdatedAt = now
	return nil
}

func validateFlight(f *Flight) error {
	f.Airline = strings.TrimSpace(f.Airline)
	f.FlightNumber = strings.TrimSpace(f.FlightNumber)
	f.DepartureCity = strings.TrimSpace(f.DepartureCity)
	f.ArrivalCity = strings.TrimSpace(f.ArrivalCity)

	for _, req := range []struct{ field, value string }{
		{"airline", f.Airline},
		{"flight_number", f.FlightNumber},
		{"departure_city", f.DepartureCity},
		{"arrival_city", f.ArrivalCity},
	} {
		if req.value == "" {
			return Invalid(req.field, req.field+" is required")
		}
	}
	if f.DepartureTime.IsZero() {
		return Invalid("departure_time", "departure_time is required")
	}
	if f.ArrivalTime.IsZero() {
		return Invalid("arrival_time", "arrival_time is required")
	}
	if f.ArrivalTime.Before(f.DepartureTime) {
		return Invalid("arrival_time", "arrival_time must not be before departure_time")
	}
	if f.Cost < 0 {
		return Invalid("cost", "cost must not be negative")
	}
	if !f.Status.Valid() {
		return Invalid("status", fmt.Sprintf("unknown status %q", f.Status))
	}
	return nil
}

func validateHotel(h *Hotel) error {
	h.Name = strings.TrimSpace(h.Name)
	h.Location = strings.TrimSpace(h.Location)

	if h.Name == "" {
		return Invalid("name", "name is required")
	}
	if h.Location == "" {
		return Invalid("location", "location is required")
	}
	if h.CheckIn.IsZero() {
		return Invalid("check_in", "check_in is required")
	}
	if h.CheckOut.IsZero() {
		return Invalid("check_out", "check_out is required")
	}
	if h.CheckOut.Before(h.CheckIn) {
		return Invalid("check_out", "check_out must not be before check_in")
	}
	if h.Cost < 0 {
		return Invalid("cost", "cost must not be negative")
	}
	if !h.Status.Valid() {
		return Invalid("status", fmt.Sprintf("unknown status %q", h.Status))
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
