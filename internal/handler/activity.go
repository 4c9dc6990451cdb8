package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// AddActivity handles POST /trips/{tripId}/activities. The response is the
// updated trip so clients see the new day plan.
func (s *Server) AddActivity(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	var body ActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	_, trip, err := s.svc.Activities.Add(r.Context(), caller(r), tripID, activityFromRequest(body))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// AddActivityToDay handles POST /trips/{tripId}/itinerary/{date}/activities.
// The path date wins over any date in the body.
func (s *Server) AddActivityToDay(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	day, ok := pathDate(w, r, "date")
	if !ok {
		return
	}
	var body ActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	_, trip, err := s.svc.Activities.AddToDay(r.Context(), caller(r), tripID, day, activityFromRequest(body))
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(trip))
}

// ListActivities handles GET /trips/{tripId}/activities.
func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	list, err := s.svc.Activities.List(r.Context(), caller(r), tripID)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, activitiesToResponse(list))
}

// ListCategories handles GET /trips/{tripId}/activities/categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, CategoriesResponse{Categories: s.svc.Activities.Categories()})
}

// GetActivity handles GET /trips/{tripId}/activities/{activityId}.
func (s *Server) GetActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := tripAndItem(w, r, "activityId")
	if !ok {
		return
	}
	a, err := s.svc.Activities.Get(r.Context(), caller(r), tripID, activityID)
	if err != nil {
		s.writeError(w, r, err, "activity not found")
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}

// UpdateActivity handles PUT /trips/{tripId}/activities/{activityId}.
func (s *Server) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := tripAndItem(w, r, "activityId")
	if !ok {
		return
	}
	var body UpdateActivityRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	a, err := s.svc.Activities.Update(r.Context(), caller(r), tripID, activityID, activityPatchFromRequest(body))
	if err != nil {
		s.writeError(w, r, err, "activity not found")
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}

// DeleteActivity handles DELETE /trips/{tripId}/activities/{activityId}.
func (s *Server) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := tripAndItem(w, r, "activityId")
	if !ok {
		return
	}
	if err := s.svc.Activities.Delete(r.Context(), caller(r), tripID, activityID); err != nil {
		s.writeError(w, r, err, "activity not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// VoteActivity handles POST /trips/{tripId}/activities/{activityId}/votes.
func (s *Server) VoteActivity(w http.ResponseWriter, r *http.Request) {
	tripID, activityID, ok := tripAndItem(w, r, "activityId")
	if !ok {
		return
	}
	var body VoteRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	a, err := s.svc.Activities.Vote(r.Context(), caller(r), tripID, activityID, domain.VoteValue(body.Vote))
	if err != nil {
		s.writeError(w, r, err, "activity not found")
		return
	}
	writeJSON(w, http.StatusOK, activityToResponse(a))
}
