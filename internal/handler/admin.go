package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// AdminListTrips handles GET /admin/trips.
func (s *Server) AdminListTrips(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	trips, total, err := s.svc.Admin.ListTrips(r.Context(), caller(r), params)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	data := make([]TripSummaryResponse, 0, len(trips))
	for _, t := range trips {
		data = append(data, TripSummaryResponse{
			ID:                t.ID,
			Title:             t.Title,
			Creator:           UserRefResponse(t.Creator),
			StartDate:         dateOf(t.StartDate),
			EndDate:           dateOf(t.EndDate),
			Destinations:      nonNil(t.Destinations),
			Status:            string(t.Status),
			ModerationStatus:  string(t.ModerationStatus),
			ActivityCount:     t.ActivityCount,
			CollaboratorCount: t.CollaboratorCount,
		})
	}
	writeJSON(w, http.StatusOK, PagedResponse[TripSummaryResponse]{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// AdminListUsers handles GET /admin/users.
func (s *Server) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	users, total, err := s.svc.Admin.ListUsers(r.Context(), caller(r), params)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	data := make([]UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, userToResponse(u))
	}
	writeJSON(w, http.StatusOK, PagedResponse[UserResponse]{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: int(total)},
	})
}

// AdminUpdateUser handles PUT /admin/users/{userId}.
func (s *Server) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}
	var body AdminUpdateUserRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	patch := domain.UserPatch{Name: body.Name}
	if body.Role != nil {
		role := domain.UserRole(*body.Role)
		patch.Role = &role
	}
	u, err := s.svc.Admin.UpdateUser(r.Context(), caller(r), userID, patch)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// AdminDeleteUser handles DELETE /admin/users/{userId}.
func (s *Server) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "userId")
	if !ok {
		return
	}
	if err := s.svc.Admin.DeleteUser(r.Context(), caller(r), userID); err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdminStatistics handles GET /admin/trip-statistics.
func (s *Server) AdminStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Admin.Statistics(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err, "not found")
		return
	}
	trend := make([]MonthlyCountResponse, 0, len(stats.MonthlyTrend))
	for _, m := range stats.MonthlyTrend {
		trend = append(trend, MonthlyCountResponse(m))
	}
	writeJSON(w, http.StatusOK, StatisticsResponse{
		TotalTrips:     stats.TotalTrips,
		OngoingTrips:   stats.OngoingTrips,
		CompletedTrips: stats.CompletedTrips,
		MonthlyTrend:   trend,
	})
}

// AdminRecentActivity handles GET /admin/user-activity.
func (s *Server) AdminRecentActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Admin.RecentActivity(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err, "not found")
		return
	}
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntryResponse{
			ID:        e.ID,
			UserID:    e.UserID,
			UserEmail: e.UserEmail,
			Action:    string(e.Action),
			Details:   e.Details,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ApproveTrip handles PUT /admin/trips/{tripId}/approve.
func (s *Server) ApproveTrip(w http.ResponseWriter, r *http.Request) {
	s.moderate(w, r, domain.ModerationConfirmed)
}

// RejectTrip handles PUT /admin/trips/{tripId}/reject.
func (s *Server) RejectTrip(w http.ResponseWriter, r *http.Request) {
	s.moderate(w, r, domain.ModerationRejected)
}

func (s *Server) moderate(w http.ResponseWriter, r *http.Request, status domain.ModerationStatus) {
	tripID, ok := pathUUID(w, r, "tripId")
	if !ok {
		return
	}
	trip, err := s.svc.Admin.Moderate(r.Context(), caller(r), tripID, status)
	if err != nil {
		s.writeError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}
