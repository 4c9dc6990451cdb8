package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// AddFlight handles POST /trips/{tripId}/flights.
func (s *Server) AddFlight(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body FlightRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	f, err := s.svc.Bookings.AddFlight(r.Context(), caller(r), tripID, domain.Flight{
		Airline:          body.Airline,
		FlightNumber:     body.FlightNumber,
		DepartureCity:    body.DepartureCity,
		ArrivalCity:      body.ArrivalCity,
		DepartureTime:    body.DepartureTime,
		ArrivalTime:      body.ArrivalTime,
		BookingReference: body.BookingReference,
		Cost:             body.Cost,
	})
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// ListFlights handles GET /trips/{tripId}/flights.
func (s *Server) ListFlights(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	flights, err := s.svc.Bookings.ListFlights(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(flights))
}

// GetFlight handles GET /trips/{tripId}/flights/{flightId}.
func (s *Server) GetFlight(w http.ResponseWriter, r *http.Request) {
	tripID, flightID, ok := tripAndItem(w, r, "flightId")
	if !ok {
		return
	}
	f, err := s.svc.Bookings.GetFlight(r.Context(), caller(r), tripID, flightID)
	if err != nil {
		s.writeError(w, r, err, "flight not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// UpdateFlight handles PUT /trips/{tripId}/flights/{flightId}.
func (s *Server) UpdateFlight(w http.ResponseWriter, r *http.Request) {
	tripID, flightID, ok := tripAndItem(w, r, "flightId")
	if !ok {
		return
	}
	var body UpdateFlightRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	f, err := s.svc.Bookings.UpdateFlight(r.Context(), caller(r), tripID, flightID, domain.FlightPatch{
		Airline:          body.Airline,
		FlightNumber:     body.FlightNumber,
		DepartureCity:    body.DepartureCity,
		ArrivalCity:      body.ArrivalCity,
		DepartureTime:    body.DepartureTime,
		ArrivalTime:      body.ArrivalTime,
		BookingReference: body.BookingReference,
		Cost:             body.Cost,
		Status:           (*domain.ItemStatus)(body.Status),
	})
	if err != nil {
		s.writeError(w, r, err, "flight not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// DeleteFlight handles DELETE /trips/{tripId}/flights/{flightId}.
func (s *Server) DeleteFlight(w http.ResponseWriter, r *http.Request) {
	tripID, flightID, ok := tripAndItem(w, r, "flightId")
	if !ok {
		return
	}
	if err := s.svc.Bookings.DeleteFlight(r.Context(), caller(r), tripID, flightID); err != nil {
		s.writeError(w, r, err, "flight not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddHotel handles POST /trips/{tripId}/hotels.
func (s *Server) AddHotel(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body HotelRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	h, err := s.svc.Bookings.AddHotel(r.Context(), caller(r), tripID, domain.Hotel{
		Name:             body.Name,
		Location:         body.Location,
		CheckIn:          dateOrZero(body.CheckIn),
		CheckOut:         dateOrZero(body.CheckOut),
		RoomType:         body.RoomType,
		BookingReference: body.BookingReference,
		Cost:             body.Cost,
		Amenities:        body.Amenities,
		Notes:            body.Notes,
	})
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, hotelToResponse(h))
}

// ListHotels handles GET /trips/{tripId}/hotels.
func (s *Server) ListHotels(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	hotels, err := s.svc.Bookings.ListHotels(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	out := make([]HotelResponse, 0, len(hotels))
	for _, h := range hotels {
		out = append(out, hotelToResponse(h))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetHotel handles GET /trips/{tripId}/hotels/{hotelId}.
func (s *Server) GetHotel(w http.ResponseWriter, r *http.Request) {
	tripID, hotelID, ok := tripAndItem(w, r, "hotelId")
	if !ok {
		return
	}
	h, err := s.svc.Bookings.GetHotel(r.Context(), caller(r), tripID, hotelID)
	if err != nil {
		s.writeError(w, r, err, "hotel not found")
		return
	}
	writeJSON(w, http.StatusOK, hotelToResponse(h))
}

// UpdateHotel handles PUT /trips/{tripId}/hotels/{hotelId}.
func (s *Server) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	tripID, hotelID, ok := tripAndItem(w, r, "hotelId")
	if !ok {
		return
	}
	var body UpdateHotelRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	h, err := s.svc.Bookings.UpdateHotel(r.Context(), caller(r), tripID, hotelID, domain.HotelPatch{
		Name:             body.Name,
		Location:         body.Location,
		CheckIn:          datePtr(body.CheckIn),
		CheckOut:         datePtr(body.CheckOut),
		RoomType:         body.RoomType,
		BookingReference: body.BookingReference,
		Cost:             body.Cost,
		Amenities:        body.Amenities,
		Notes:            body.Notes,
		Status:           (*domain.ItemStatus)(body.Status),
	})
	if err != nil {
		s.writeError(w, r, err, "hotel not found")
		return
	}
	writeJSON(w, http.StatusOK, hotelToResponse(h))
}

// DeleteHotel handles DELETE /trips/{tripId}/hotels/{hotelId}.
func (s *Server) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	tripID, hotelID, ok := tripAndItem(w, r, "hotelId")
	if !ok {
		return
	}
	if err := s.svc.Bookings.DeleteHotel(r.Context(), caller(r), tripID, hotelID); err != nil {
		s.writeError(w, r, err, "hotel not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
