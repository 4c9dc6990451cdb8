package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrForbidden is returned when an authenticated caller lacks the capability
// required for an operation on an existing resource.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrUnauthenticated is returned when no caller identity is present.
// Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrConflict is returned when a write was based on a stale version of a trip.
// The caller may reload and retry. Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrAlreadyCollaborator is returned when inviting a user who already holds a
// collaborator entry on the trip. It is a validation failure.
var ErrAlreadyCollaborator = &FieldError{Field: "user_id", Message: "user is already a collaborator"}

// FieldError is a validation failure attached to a single input field.
// errors.Is(err, ErrValidation) reports true for any *FieldError.
type FieldError struct {
	Field   string
	Message string
}

// Invalid constructs a *FieldError for field.
func Invalid(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return "validation error: " + e.Field + ": " + e.Message
}

// Is makes every FieldError match ErrValidation.
func (e *FieldError) Is(target error) bool {
	return target == ErrValidation
}
