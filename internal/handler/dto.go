package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// --- requests ---------------------------------------------------------------

// CreateTripRequest is the body of POST /trips.
type CreateTripRequest struct {
	Title        string              `json:"title"`
	StartDate    *openapi_types.Date `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date"`
	Destinations []string            `json:"destinations"`
	Budget       *domain.Budget      `json:"budget,omitempty"`
	Preferences  *domain.Preferences `json:"preferences,omitempty"`
}

// UpdateTripRequest is the body of PUT /trips/{tripId}. Omitted fields are
// left untouched.
type UpdateTripRequest struct {
	Title        *string             `json:"title"`
	StartDate    *openapi_types.Date `json:"start_date"`
	EndDate      *openapi_types.Date `json:"end_date"`
	Destinations []string            `json:"destinations"`
	Status       *string             `json:"status"`
	Budget       *domain.Budget      `json:"budget"`
	Preferences  *domain.Preferences `json:"preferences"`
}

// ActivityRequest is the body of the activity create routes.
type ActivityRequest struct {
	Title            string              `json:"title"`
	Type             string              `json:"type"`
	Date             *openapi_types.Date `json:"date"`
	StartTime        string              `json:"start_time"`
	Duration         string              `json:"duration"`
	Location         string              `json:"location"`
	Description      string              `json:"description"`
	Cost             float64             `json:"cost"`
	BookingReference string              `json:"booking_reference"`
	Category         string              `json:"category"`
	Attachments      []string            `json:"attachments"`
}

// UpdateActivityRequest is the body of PUT .../activities/{activityId}.
type UpdateActivityRequest struct {
	Title            *string             `json:"title"`
	Type             *string             `json:"type"`
	Date             *openapi_types.Date `json:"date"`
	StartTime        *string             `json:"start_time"`
	Duration         *string             `json:"duration"`
	Location         *string             `json:"location"`
	Description      *string             `json:"description"`
	Cost             *float64            `json:"cost"`
	BookingReference *string             `json:"booking_reference"`
	Category         *string             `json:"category"`
	Attachments      []string            `json:"attachments"`
	Status           *string             `json:"status"`
}

// VoteRequest is the body of POST .../activities/{activityId}/votes.
type VoteRequest struct {
	Vote string `json:"vote"`
}

// FlightRequest is the body of POST .../flights.
type FlightRequest struct {
	Airline          string    `json:"airline"`
	FlightNumber     string    `json:"flight_number"`
	DepartureCity    string    `json:"departure_city"`
	ArrivalCity      string    `json:"arrival_city"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	BookingReference string    `json:"booking_reference"`
	Cost             float64   `json:"cost"`
}

// UpdateFlightRequest is the body of PUT .../flights/{flightId}.
type UpdateFlightRequest struct {
	Airline          *string    `json:"airline"`
	FlightNumber     *string    `json:"flight_number"`
	DepartureCity    *string    `json:"departure_city"`
	ArrivalCity      *string    `json:"arrival_city"`
	DepartureTime    *time.Time `json:"departure_time"`
	ArrivalTime      *time.Time `json:"arrival_time"`
	BookingReference *string    `json:"booking_reference"`
	Cost             *float64   `json:"cost"`
	Status           *string    `json:"status"`
}

// HotelRequest is the body of POST .../hotels.
type HotelRequest struct {
	Name             string              `json:"name"`
	Location         string              `json:"location"`
	CheckIn          *openapi_types.Date `json:"check_in"`
	CheckOut         *openapi_types.Date `json:"check_out"`
	RoomType         string              `json:"room_type"`
	BookingReference string              `json:"booking_reference"`
	Cost             float64             `json:"cost"`
	Amenities        string              `json:"amenities"`
	Notes            string              `json:"notes"`
}

// UpdateHotelRequest is the body of PUT .../hotels/{hotelId}.
type UpdateHotelRequest struct {
	Name             *string             `json:"name"`
	Location         *string             `json:"location"`
	CheckIn          *openapi_types.Date `json:"check_in"`
	CheckOut         *openapi_types.Date `json:"check_out"`
	RoomType         *string             `json:"room_type"`
	BookingReference *string             `json:"booking_reference"`
	Cost             *float64            `json:"cost"`
	Amenities        *string             `json:"amenities"`
	Notes            *string             `json:"notes"`
	Status           *string             `json:"status"`
}

// ChatRequest is the body of POST .../chat.
type ChatRequest struct {
	Content string `json:"content"`
}

// InviteRequest is the body of POST .../collaborators.
type InviteRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Role   string    `json:"role"`
}

// RespondRequest is the body of POST .../collaborators/respond.
type RespondRequest struct {
	Accept *bool `json:"accept"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest is the body of PUT /me.
type UpdateProfileRequest struct {
	Name string `json:"name"`
}

// ChangePasswordRequest is the body of POST /me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AdminUpdateUserRequest is the body of PUT /admin/users/{userId}.
type AdminUpdateUserRequest struct {
	Name *string `json:"name"`
	Role *string `json:"role"`
}

// --- responses --------------------------------------------------------------

// Pagination describes the page of a list response.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// PagedResponse wraps one page of a listing.
type PagedResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// TripResponse is the full trip view returned by trip reads and mutations.
type TripResponse struct {
	ID               uuid.UUID             `json:"id"`
	Title            string                `json:"title"`
	CreatorID        uuid.UUID             `json:"creator_id"`
	StartDate        openapi_types.Date    `json:"start_date"`
	EndDate          openapi_types.Date    `json:"end_date"`
	Destinations     []string              `json:"destinations"`
	Status           string                `json:"status"`
	ModerationStatus string                `json:"moderation_status,omitempty"`
	Budget           domain.Budget         `json:"budget"`
	Preferences      domain.Preferences    `json:"preferences"`
	Collaborators    []domain.Collaborator `json:"collaborators"`
	Activities       []ActivityResponse    `json:"activities"`
	Itinerary        []DayPlanResponse     `json:"itinerary"`
	Flights          []domain.Flight       `json:"flights"`
	Hotels           []HotelResponse       `json:"hotels"`
	Messages         []domain.ChatMessage  `json:"chat_messages"`
	EstimatedCost    float64               `json:"estimated_cost"`
	Version          int64                 `json:"version"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// DayPlanResponse is one day of the itinerary.
type DayPlanResponse struct {
	Date       openapi_types.Date `json:"date"`
	Activities []ActivityResponse `json:"activities"`
}

// ActivityResponse is an activity with its calendar day as a date.
type ActivityResponse struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	Type             string             `json:"type"`
	Date             openapi_types.Date `json:"date"`
	StartTime        string             `json:"start_time"`
	Duration         string             `json:"duration,omitempty"`
	Location         string             `json:"location,omitempty"`
	Description      string             `json:"description,omitempty"`
	Cost             float64            `json:"cost"`
	BookingReference string             `json:"booking_reference,omitempty"`
	Category         string             `json:"category,omitempty"`
	Attachments      []string           `json:"attachments,omitempty"`
	CreatedBy        uuid.UUID          `json:"created_by"`
	Status           string             `json:"status"`
	Votes            []domain.Vote      `json:"votes"`
	Upvotes          int                `json:"upvotes"`
	Downvotes        int                `json:"downvotes"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// HotelResponse is a hotel booking with its stay as dates.
type HotelResponse struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	Location         string             `json:"location"`
	CheckIn          openapi_types.Date `json:"check_in"`
	CheckOut         openapi_types.Date `json:"check_out"`
	RoomType         string             `json:"room_type,omitempty"`
	BookingReference string             `json:"booking_reference,omitempty"`
	Cost             float64            `json:"cost"`
	Amenities        string             `json:"amenities,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// UserResponse is an account without its credentials.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// CategoriesResponse lists the activity categories offered to clients.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// UserRefResponse is the public identity embedded in admin views.
type UserRefResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email,omitempty"`
	Name  string    `json:"name,omitempty"`
}

// TripSummaryResponse is one row of GET /admin/trips.
type TripSummaryResponse struct {
	ID                uuid.UUID          `json:"id"`
	Title             string             `json:"title"`
	Creator           UserRefResponse    `json:"creator"`
	StartDate         openapi_types.Date `json:"start_date"`
	EndDate           openapi_types.Date `json:"end_date"`
	Destinations      []string           `json:"destinations"`
	Status            string             `json:"status"`
	ModerationStatus  string             `json:"moderation_status,omitempty"`
	ActivityCount     int                `json:"activity_count"`
	CollaboratorCount int                `json:"collaborator_count"`
}

// MonthlyCountResponse is one point of the monthly trend.
type MonthlyCountResponse struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Count int    `json:"count"`
}

// StatisticsResponse is the body of GET /admin/trip-statistics.
type StatisticsResponse struct {
	TotalTrips     int                    `json:"total_trips"`
	OngoingTrips   int                    `json:"ongoing_trips"`
	CompletedTrips int                    `json:"completed_trips"`
	MonthlyTrend   []MonthlyCountResponse `json:"monthly_trend"`
}

// AuditEntryResponse is one row of GET /admin/user-activity.
type AuditEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserEmail string    `json:"user_email,omitempty"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// ExportRowResponse is one row of the JSON export.
type ExportRowResponse struct {
	TripID        string  `json:"trip_id"`
	TripTitle     string  `json:"trip_title"`
	TripStartDate string  `json:"trip_start_date"`
	TripEndDate   string  `json:"trip_end_date"`
	Day           string  `json:"day"`
	StartTime     string  `json:"start_time"`
	Title         string  `json:"title"`
	Type          string  `json:"type"`
	Location      string  `json:"location"`
	Cost          float64 `json:"cost"`
	Status        string  `json:"status"`
}

// --- mapping helpers --------------------------------------------------------

func dateOf(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

// datePtr unwraps an optional request date.
func datePtr(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func dateOrZero(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func tripToResponse(t domain.Trip) TripResponse {
	resp := TripResponse{
		ID:               t.ID,
		Title:            t.Title,
		CreatorID:        t.CreatorID,
		StartDate:        dateOf(t.StartDate),
		EndDate:          dateOf(t.EndDate),
		Destinations:     nonNil(t.Destinations),
		Status:           string(t.Status),
		ModerationStatus: string(t.ModerationStatus),
		Budget:           t.Budget,
		Preferences:      t.Preferences,
		Collaborators:    nonNil(t.Collaborators),
		Activities:       activitiesToResponse(t.Activities),
		Flights:          nonNil(t.Flights),
		Hotels:           make([]HotelResponse, 0, len(t.Hotels)),
		Messages:         nonNil(t.Messages),
		EstimatedCost:    t.EstimatedCost(),
		Version:          t.Version,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
	resp.Itinerary = itineraryToResponse(t.Itinerary())
	for _, h := range t.Hotels {
		resp.Hotels = append(resp.Hotels, hotelToResponse(h))
	}
	return resp
}

func itineraryToResponse(plans []domain.DayPlan) []DayPlanResponse {
	out := make([]DayPlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, DayPlanResponse{Date: dateOf(p.Date), Activities: activitiesToResponse(p.Activities)})
	}
	return out
}

func activitiesToResponse(as []domain.Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(as))
	for _, a := range as {
		out = append(out, activityToResponse(a))
	}
	return out
}

func activityToResponse(a domain.Activity) ActivityResponse {
	up, down := a.Tally()
	return ActivityResponse{
		ID:               a.ID,
		Title:            a.Title,
		Type:             string(a.Type),
		Date:             dateOf(a.Date),
		StartTime:        a.StartTime,
		Duration:         a.Duration,
		Location:         a.Location,
		Description:      a.Description,
		Cost:             a.Cost,
		BookingReference: a.BookingReference,
		Category:         a.Category,
		Attachments:      a.Attachments,
		CreatedBy:        a.CreatedBy,
		Status:           string(a.Status),
		Votes:            nonNil(a.Votes),
		Upvotes:          up,
		Downvotes:        down,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

func hotelToResponse(h domain.Hotel) HotelResponse {
	return HotelResponse{
		ID:               h.ID,
		Name:             h.Name,
		Location:         h.Location,
		CheckIn:          dateOf(h.CheckIn),
		CheckOut:         dateOf(h.CheckOut),
		RoomType:         h.RoomType,
		BookingReference: h.BookingReference,
		Cost:             h.Cost,
		Amenities:        h.Amenities,
		Notes:            h.Notes,
		Status:           string(h.Status),
		CreatedAt:        h.CreatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

func userToResponse(u domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func activityFromRequest(body ActivityRequest) domain.Activity {
	return domain.Activity{
		Title:            body.Title,
		Type:             domain.ActivityType(body.Type),
		Date:             dateOrZero(body.Date),
		StartTime:        body.StartTime,
		Duration:         body.Duration,
		Location:         body.Location,
		Description:      body.Description,
		Cost:             body.Cost,
		BookingReference: body.BookingReference,
		Category:         body.Category,
		Attachments:      body.Attachments,
	}
}

func activityPatchFromRequest(body UpdateActivityRequest) domain.ActivityPatch {
	return domain.ActivityPatch{
		Title:            body.Title,
		Type:             (*domain.ActivityType)(body.Type),
		Date:             datePtr(body.Date),
		StartTime:        body.StartTime,
		Duration:         body.Duration,
		Location:         body.Location,
		Description:      body.Description,
		Cost:             body.Cost,
		BookingReference: body.BookingReference,
		Category:         body.Category,
		Attachments:      body.Attachments,
		Status:           (*domain.ItemStatus)(body.Status),
	}
}

// nonNil makes empty collections encode as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
