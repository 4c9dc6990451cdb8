// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into resource files
// (trip.go, activity.go, booking.go, ...) and share the same Server struct.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// TripServicer defines the trip-level operations the handlers depend on.
// Interfaces are declared here, in the consumer package, so handler tests can
// inject mocks without touching storage.
type TripServicer interface {
	Create(ctx context.Context, actor uuid.UUID, input domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, error)
	Update(ctx context.Context, actor, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error)
	Delete(ctx context.Context, actor, tripID uuid.UUID) error
	List(ctx context.Context, actor uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Invitations(ctx context.Context, actor uuid.UUID) ([]domain.Trip, error)
	Invite(ctx context.Context, actor, tripID, invitee uuid.UUID, role domain.CollaboratorRole) (domain.Collaborator, error)
	Respond(ctx context.Context, actor, tripID uuid.UUID, accept bool) (domain.Trip, error)
	RemoveCollaborator(ctx context.Context, actor, tripID, user uuid.UUID) error
	Itinerary(ctx context.Context, actor, tripID uuid.UUID) ([]domain.DayPlan, error)
}

// ActivityServicer defines the itinerary operations.
type ActivityServicer interface {
	Add(ctx context.Context, actor, tripID uuid.UUID, a domain.Activity) (domain.Activity, domain.Trip, error)
	AddToDay(ctx context.Context, actor, tripID uuid.UUID, day time.Time, a domain.Activity) (domain.Activity, domain.Trip, error)
	List(ctx context.Context, actor, tripID uuid.UUID) ([]domain.Activity, error)
	Get(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Activity, error)
	Update(ctx context.Context, actor, tripID, activityID uuid.UUID, patch domain.ActivityPatch) (domain.Activity, error)
	Delete(ctx context.Context, actor, tripID, activityID uuid.UUID) error
	Vote(ctx context.Context, actor, tripID, activityID uuid.UUID, v domain.VoteValue) (domain.Activity, error)
	Categories() []string
}

// BookingServicer defines the flight and hotel operations.
type BookingServicer interface {
	AddFlight(ctx context.Context, actor, tripID uuid.UUID, f domain.Flight) (domain.Flight, error)
	ListFlights(ctx context.Context, actor, tripID uuid.UUID) ([]domain.Flight, error)
	GetFlight(ctx context.Context, actor, tripID, flightID uuid.UUID) (domain.Flight, error)
	UpdateFlight(ctx context.Context, actor, tripID, flightID uuid.UUID, p domain.FlightPatch) (domain.Flight, error)
	DeleteFlight(ctx context.Context, actor, tripID, flightID uuid.UUID) error
	AddHotel(ctx context.Context, actor, tripID uuid.UUID, h domain.Hotel) (domain.Hotel, error)
	ListHotels(ctx context.Context, actor, tripID uuid.UUID) ([]domain.Hotel, error)
	GetHotel(ctx context.Context, actor, tripID, hotelID uuid.UUID) (domain.Hotel, error)
	UpdateHotel(ctx context.Context, actor, tripID, hotelID uuid.UUID, p domain.HotelPatch) (domain.Hotel, error)
	DeleteHotel(ctx context.Context, actor, tripID, hotelID uuid.UUID) error
}

// ChatServicer defines the trip chat operations.
type ChatServicer interface {
	Post(ctx context.Context, actor, tripID uuid.UUID, content string) (domain.ChatMessage, error)
	List(ctx context.Context, actor, tripID uuid.UUID) ([]domain.ChatMessage, error)
}

// AdminServicer defines the admin dashboard operations.
type AdminServicer interface {
	ListTrips(ctx context.Context, actor uuid.UUID, p domain.PaginationParams) ([]domain.TripSummary, int64, error)
	ListUsers(ctx context.Context, actor uuid.UUID, p domain.PaginationParams) ([]domain.User, int64, error)
	Statistics(ctx context.Context, actor uuid.UUID) (domain.TripStats, error)
	RecentActivity(ctx context.Context, actor uuid.UUID) ([]domain.AuditEntry, error)
	Moderate(ctx context.Context, actor, tripID uuid.UUID, status domain.ModerationStatus) (domain.Trip, error)
	UpdateUser(ctx context.Context, actor, userID uuid.UUID, patch domain.UserPatch) (domain.User, error)
	DeleteUser(ctx context.Context, actor, userID uuid.UUID) error
}

// AuthServicer defines account registration, login and self-service profile edits.
type AuthServicer interface {
	Register(ctx context.Context, email, name, password string) (service.Session, error)
	Login(ctx context.Context, email, password string) (service.Session, error)
	Me(ctx context.Context, actor uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, actor uuid.UUID, name string) (domain.User, error)
	ChangePassword(ctx context.Context, actor uuid.UUID, current, next string) error
}

// Exporter produces the flat itinerary export of one trip.
type Exporter interface {
	Export(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error)
}

// Services bundles the dependencies of Server. A nil field leaves its routes
// unmounted.
type Services struct {
	Trips      TripServicer
	Activities ActivityServicer
	Bookings   BookingServicer
	Chat       ChatServicer
	Admin      AdminServicer
	Auth       AuthServicer
	Export     Exporter
}

// Middleware are the route-group middlewares Mount applies. Nil entries are
// skipped.
type Middleware struct {
	// Authenticate resolves the bearer token. It guards every route except
	// health, the OpenAPI document and /auth.
	Authenticate func(http.Handler) http.Handler

	// RequireAdmin additionally guards /admin.
	RequireAdmin func(http.Handler) http.Handler

	// Idempotency wraps authenticated routes so POST/PUT can be replayed.
	Idempotency func(http.Handler) http.Handler
}

// Server holds the handler dependencies.
type Server struct {
	svc Services
	log *slog.Logger
}

// NewServer constructs the Server. A nil logger falls back to slog.Default.
func NewServer(svc Services, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, log: log}
}

// Mount registers every route on r.
func (s *Server) Mount(r chi.Router, mw Middleware) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	if s.svc.Auth != nil {
		r.Post("/auth/register", s.Register)
		r.Post("/auth/login", s.Login)
	}

	r.Group(func(r chi.Router) {
		use(r, mw.Authenticate, mw.Idempotency)

		if s.svc.Auth != nil {
			r.Get("/me", s.GetMe)
			r.Put("/me", s.UpdateMe)
			r.Post("/me/password", s.ChangePassword)
		}
		if s.svc.Trips != nil {
			r.Route("/trips", s.tripRoutes)
		}
		if s.svc.Admin != nil {
			r.Route("/admin", func(r chi.Router) {
				use(r, mw.RequireAdmin)
				r.Get("/trips", s.AdminListTrips)
				r.Get("/users", s.AdminListUsers)
				r.Put("/users/{userId}", s.AdminUpdateUser)
				r.Delete("/users/{userId}", s.AdminDeleteUser)
				r.Get("/trip-statistics", s.AdminStatistics)
				r.Get("/user-activity", s.AdminRecentActivity)
				r.Put("/trips/{tripId}/approve", s.ApproveTrip)
				r.Put("/trips/{tripId}/reject", s.RejectTrip)
			})
		}
	})
}

func (s *Server) tripRoutes(r chi.Router) {
	r.Post("/", s.CreateTrip)
	r.Get("/", s.ListTrips)
	r.Get("/invitations", s.ListInvitations)

	r.Route("/{tripId}", func(r chi.Router) {
		r.Get("/", s.GetTrip)
		r.Put("/", s.UpdateTrip)
		r.Delete("/", s.DeleteTrip)

		r.Post("/collaborators", s.InviteCollaborator)
		r.Post("/collaborators/respond", s.RespondToInvitation)
		r.Delete("/collaborators/{userId}", s.RemoveCollaborator)

		r.Get("/itinerary", s.GetItinerary)

		if s.svc.Activities != nil {
			r.Post("/itinerary/{date}/activities", s.AddActivityToDay)
			r.Get("/activities/categories", s.ListCategories)
			r.Post("/activities", s.AddActivity)
			r.Get("/activities", s.ListActivities)
			r.Get("/activities/{activityId}", s.GetActivity)
			r.Put("/activities/{activityId}", s.UpdateActivity)
			r.Delete("/activities/{activityId}", s.DeleteActivity)
			r.Post("/activities/{activityId}/votes", s.VoteActivity)
		}
		if s.svc.Bookings != nil {
			r.Post("/flights", s.AddFlight)
			r.Get("/flights", s.ListFlights)
			r.Get("/flights/{flightId}", s.GetFlight)
			r.Put("/flights/{flightId}", s.UpdateFlight)
			r.Delete("/flights/{flightId}", s.DeleteFlight)

			r.Post("/hotels", s.AddHotel)
			r.Get("/hotels", s.ListHotels)
			r.Get("/hotels/{hotelId}", s.GetHotel)
			r.Put("/hotels/{hotelId}", s.UpdateHotel)
			r.Delete("/hotels/{hotelId}", s.DeleteHotel)
		}
		if s.svc.Chat != nil {
			r.Post("/chat", s.PostMessage)
			r.Get("/chat", s.ListMessages)
		}
		if s.svc.Export != nil {
			r.Get("/export", s.GetExport)
		}
	})
}

func use(r chi.Router, mws ...func(http.Handler) http.Handler) {
	for _, mw := range mws {
		if mw != nil {
			r.Use(mw)
		}
	}
}
