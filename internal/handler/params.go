package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/auth"
	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// pathUUID binds the named path parameter as a UUID. On failure it writes a
// validation error and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, name, name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// pathDate binds the named path parameter as a YYYY-MM-DD calendar day.
func pathDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	var d openapi_types.Date
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &d,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		badRequest(w, name, name+" must be formatted YYYY-MM-DD")
		return time.Time{}, false
	}
	return d.Time, true
}

// pagination binds the optional ?page= and ?limit= query parameters.
func pagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	var page, limit *int
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		badRequest(w, "page", "page must be an integer")
		return domain.PaginationParams{}, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &limit); err != nil {
		badRequest(w, "limit", "limit must be an integer")
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}

// tripAndItem binds {tripId} and the named sub-resource id in one call.
func tripAndItem(w http.ResponseWriter, r *http.Request, item string) (tripID, itemID uuid.UUID, ok bool) {
	if tripID, ok = pathUUID(w, r, "tripId"); !ok {
		return uuid.Nil, uuid.Nil, false
	}
	if itemID, ok = pathUUID(w, r, item); !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return tripID, itemID, true
}

// caller returns the authenticated user id, or uuid.Nil.
func caller(r *http.Request) uuid.UUID {
	return auth.UserID(r.Context())
}
