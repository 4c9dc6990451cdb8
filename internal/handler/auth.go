package handler

import (
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/service"
)

// Register handles POST /auth/register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var body RegisterRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	sess, err := s.svc.Auth.Register(r.Context(), body.Email, body.Name, body.Password)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// Login handles POST /auth/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body LoginRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	sess, err := s.svc.Auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// GetMe handles GET /me.
func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.Auth.Me(r.Context(), caller(r))
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// UpdateMe handles PUT /me.
func (s *Server) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var body UpdateProfileRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	u, err := s.svc.Auth.UpdateProfile(r.Context(), caller(r), body.Name)
	if err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// ChangePassword handles POST /me/password.
func (s *Server) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var body ChangePasswordRequest
	if !decodeJSON(w, r, &body) {
		return
	}
	if err := s.svc.Auth.ChangePassword(r.Context(), caller(r), body.CurrentPassword, body.NewPassword); err != nil {
		s.writeError(w, r, err, "user not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionToResponse(s service.Session) SessionResponse {
	return SessionResponse{Token: s.Token, ExpiresAt: s.ExpiresAt, User: userToResponse(s.User)}
}
