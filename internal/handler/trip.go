package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body CreateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	input := domain.Trip{
		Title:        body.Title,
		StartDate:    dateOrZero(body.StartDate),
		EndDate:      dateOrZero(body.EndDate),
		Destinations: body.Destinations,
	}
	if body.Budget != nil {
		input.Budget = *body.Budget
	}
	if body.Preferences != nil {
		input.Preferences = *body.Preferences
	}

	created, err := s.svc.Trips.Create(r.Context(), caller(r), input)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	trips, total, err := s.svc.Trips.List(r.Context(), caller(r), params)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}

	data := make([]TripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, PagedResponse[TripResponse]{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// ListInvitations handles GET /trips/invitations.
func (s *Server) ListInvitations(w http.ResponseWriter, r *http.Request) {
	trips, err := s.svc.Trips.Invitations(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	data := make([]TripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, data)
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.svc.Trips.Get(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripId}.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body UpdateTripRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	patch := domain.TripPatch{
		Title:        body.Title,
		StartDate:    datePtr(body.StartDate),
		EndDate:      datePtr(body.EndDate),
		Destinations: body.Destinations,
		Status:       (*domain.LifecycleStatus)(body.Status),
		Budget:       body.Budget,
		Preferences:  body.Preferences,
	}

	updated, err := s.svc.Trips.Update(r.Context(), caller(r), tripID, patch)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	if err := s.svc.Trips.Delete(r.Context(), caller(r), tripID); err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetItinerary handles GET /trips/{tripId}/itinerary.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	plans, err := s.svc.Trips.Itinerary(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, itineraryToResponse(plans))
}

// InviteCollaborator handles POST /trips/{tripId}/collaborators.
func (s *Server) InviteCollaborator(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body InviteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	added, err := s.svc.Trips.Invite(r.Context(), caller(r), tripID, body.UserID, domain.CollaboratorRole(body.Role))
	if err != nil {
		s.writeError(w, r, err, "trip or user not found")
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

// RespondToInvitation handles POST /trips/{tripId}/collaborators/respond.
func (s *Server) RespondToInvitation(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body RespondRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Accept == nil {
		badRequest(w, "accept", "accept is required")
		return
	}
	trip, err := s.svc.Trips.Respond(r.Context(), caller(r), tripID, *body.Accept)
	if err != nil {
		s.writeError(w, r, err, "invitation not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// RemoveCollaborator handles DELETE /trips/{tripId}/collaborators/{userId}.
func (s *Server) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	tripID, userID, ok := tripAndItem(w, r, "userId")
	if !ok {
		return
	}
	if err := s.svc.Trips.RemoveCollaborator(r.Context(), caller(r), tripID, userID); err != nil {
		s.writeError(w, r, err, "collaborator not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
