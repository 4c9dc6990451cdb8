package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes what went wrong. Field names the offending input for
// validation errors; Retryable is set when repeating the request may succeed.
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorBody(w http.ResponseWriter, status int, d ErrorDetail) {
	writeJSON(w, status, ErrorResponse{Error: d})
}

// badRequest reports input rejected before reaching the service layer.
func badRequest(w http.ResponseWriter, field, message string) {
	writeErrorBody(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: message, Field: field})
}

// writeError maps a service error onto the response. notFound is the message
// used for domain.ErrNotFound, since only the handler knows what it looked up.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		fe      *domain.FieldError
		tooLong *http.MaxBytesError
	)
	switch {
	case errors.As(err, &fe):
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: fe.Message, Field: fe.Field})
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, ErrorDetail{Code: "validation_error", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeErrorBody(w, http.StatusUnauthorized, ErrorDetail{Code: "unauthenticated", Message: unauthenticatedMessage(err)})
	case errors.Is(err, domain.ErrForbidden):
		writeErrorBody(w, http.StatusForbidden, ErrorDetail{Code: "forbidden", Message: "you do not have access to this resource"})
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, ErrorDetail{Code: "not_found", Message: notFound})
	case errors.Is(err, domain.ErrConflict):
		writeErrorBody(w, http.StatusConflict, ErrorDetail{Code: "conflict", Message: "the trip was modified concurrently, retry the request", Retryable: true})
	case errors.As(err, &tooLong):
		writeErrorBody(w, http.StatusRequestEntityTooLarge, ErrorDetail{Code: "request_too_large", Message: "request body too large"})
	default:
		s.log.ErrorContext(r.Context(), "request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeErrorBody(w, http.StatusInternalServerError, ErrorDetail{Code: "internal_error", Message: "internal server error"})
	}
}

// unauthenticatedMessage keeps login failures specific and everything else generic.
func unauthenticatedMessage(err error) string {
	if errors.Is(err, service.ErrBadCredentials) {
		return "invalid email or password"
	}
	return "authentication required"
}

// decodeJSON reads a JSON request body into dst. A missing or malformed body
// is reported to the client; an oversized one is answered with 413.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		badRequest(w, "", "request body is required")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLong *http.MaxBytesError
		if errors.As(err, &tooLong) {
			writeErrorBody(w, http.StatusRequestEntityTooLarge, ErrorDetail{Code: "request_too_large", Message: "request body too large"})
			return false
		}
		badRequest(w, "", "malformed JSON body: "+err.Error())
		return false
	}
	return true
}
