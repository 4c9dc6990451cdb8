// Package domain contains the core data types of the trip planner and the pure
// functions that mutate a Trip aggregate. Nothing in this package performs I/O;
// every rule here is testable without a database.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trip is the root aggregate. It exclusively owns its collaborators,
// activities, bookings and chat log; none of them is addressable outside it.
//
// Activities are stored once. The per-day itinerary is a projection computed
// by Itinerary from Activities and Days, so the two views cannot drift apart.
type Trip struct {
	ID               uuid.UUID        `json:"id"`
	Title            string           `json:"title"`
	CreatorID        uuid.UUID        `json:"creator_id"`
	Collaborators    []Collaborator   `json:"collaborators"`
	StartDate        time.Time        `json:"start_date"`
	EndDate          time.Time        `json:"end_date"`
	Destinations     []string         `json:"destinations"`
	Status           LifecycleStatus  `json:"status"`
	ModerationStatus ModerationStatus `json:"moderation_status,omitempty"`
	Budget           Budget           `json:"budget"`
	Preferences      Preferences      `json:"preferences"`

	// Days holds every calendar day that has had an activity filed under it.
	// A day stays registered after its last activity is removed.
	Days       []time.Time   `json:"days"`
	Activities []Activity    `json:"activities"`
	Flights    []Flight      `json:"flights"`
	Hotels     []Hotel       `json:"hotels"`
	Messages   []ChatMessage `json:"chat_messages"`

	// Version increases by one on every persisted write.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Budget is the user-declared spending envelope of a trip.
type Budget struct {
	Total    float64 `json:"total"`
	Spent    float64 `json:"spent"`
	Currency string  `json:"currency,omitempty"`
}

// Preferences captures how the travellers like to travel.
type Preferences struct {
	TravelStyle    string `json:"travel_style"`
	Accommodation  string `json:"accommodation"`
	Transportation string `json:"transportation"`
}

var (
	travelStyles    = []string{"luxury", "budget", "adventure", "relaxation"}
	accommodations  = []string{"hotel", "hostel", "apartment", "camping"}
	transportations = []string{"flight", "train", "bus", "car"}
)

// DefaultPreferences are applied to any preference left empty.
func DefaultPreferences() Preferences {
	return Preferences{TravelStyle: "budget", Accommodation: "hotel", Transportation: "flight"}
}

// TripPatch is a shallow update of a trip. Nil fields are left untouched.
type TripPatch struct {
	Title        *string
	StartDate    *time.Time
	EndDate      *time.Time
	Destinations []string
	Status       *LifecycleStatus
	Budget       *Budget
	Preferences  *Preferences
}

// NewTrip validates the creation fields and returns a trip owned by creator.
// The end date must not be before the start date; violations are never
// corrected silently.
func NewTrip(creator uuid.UUID, t Trip, now time.Time) (Trip, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return Trip{}, Invalid("title", "title is required")
	}
	if t.StartDate.IsZero() {
		return Trip{}, Invalid("start_date", "start_date is required")
	}
	if t.EndDate.IsZero() {
		return Trip{}, Invalid("end_date", "end_date is required")
	}
	t.StartDate = truncateDay(t.StartDate)
	t.EndDate = truncateDay(t.EndDate)
	if err := CheckDateRange(t.StartDate, t.EndDate); err != nil {
		return Trip{}, err
	}
	dests, err := cleanDestinations(t.Destinations)
	if err != nil {
		return Trip{}, err
	}
	if t.Status == "" {
		t.Status = StatusPlanning
	}
	if !t.Status.Valid() {
		return Trip{}, Invalid("status", fmt.Sprintf("unknown status %q", t.Status))
	}
	prefs, err := cleanPreferences(t.Preferences)
	if err != nil {
		return Trip{}, err
	}
	if t.Budget.Total < 0 || t.Budget.Spent < 0 {
		return Trip{}, Invalid("budget", "budget amounts must not be negative")
	}

	return Trip{
		ID:           uuid.New(),
		Title:        t.Title,
		CreatorID:    creator,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		Destinations: dests,
		Status:       t.Status,
		Budget:       t.Budget,
		Preferences:  prefs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckDateRange enforces end >= start on calendar days.
func CheckDateRange(start, end time.Time) error {
	if truncateDay(end).Before(truncateDay(start)) {
		return Invalid("end_date", "end_date must not be before start_date")
	}
	return nil
}

// ApplyPatch merges p into the trip. Each patched field is checked on its own;
// the start/end ordering is left to the store, which rejects a violating
// document on write.
func (t *Trip) ApplyPatch(p TripPatch, now time.Time) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Invalid("title", "title must not be empty")
		}
		t.Title = title
	}
	if p.StartDate != nil {
		if p.StartDate.IsZero() {
			return Invalid("start_date", "start_date must not be empty")
		}
		t.StartDate = truncateDay(*p.StartDate)
	}
	if p.EndDate != nil {
		if p.EndDate.IsZero() {
			return Invalid("end_date", "end_date must not be empty")
		}
		t.EndDate = truncateDay(*p.EndDate)
	}
	if p.Destinations != nil {
		dests, err := cleanDestinations(p.Destinations)
		if err != nil {
			return err
		}
		t.Destinations = dests
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return Invalid("status", fmt.Sprintf("unknown status %q", *p.Status))
		}
		if !t.Status.CanTransitionTo(*p.Status) {
			return Invalid("status", fmt.Sprintf("cannot move trip from %s back to %s", t.Status, *p.Status))
		}
		t.Status = *p.Status
	}
	if p.Budget != nil {
		if p.Budget.Total < 0 || p.Budget.Spent < 0 {
			return Invalid("budget", "budget amounts must not be negative")
		}
		t.Budget = *p.Budget
	}
	if p.Preferences != nil {
		prefs, err := cleanPreferences(*p.Preferences)
		if err != nil {
			return err
		}
		t.Preferences = prefs
	}
	t.UpdatedAt = now
	return nil
}

// Moderate sets the admin overlay status. The lifecycle status is untouched.
func (t *Trip) Moderate(status ModerationStatus, now time.Time) error {
	if status == ModerationNone || !status.Valid() {
		return Invalid("moderation_status", fmt.Sprintf("unknown moderation status %q", status))
	}
	t.ModerationStatus = status
	t.UpdatedAt = now
	return nil
}

// EstimatedCost sums the cost of every activity on the trip.
func (t Trip) EstimatedCost() float64 {
	var total float64
	for _, a := range t.Activities {
		total += a.Cost
	}
	return total
}

// Clone returns a deep copy so a mutation can be applied without touching the
// loaded document until it has been persisted.
func (t Trip) Clone() Trip {
	c := t
	c.Collaborators = append([]Collaborator(nil), t.Collaborators...)
	c.Destinations = append([]string(nil), t.Destinations...)
	c.Days = append([]time.Time(nil), t.Days...)
	c.Activities = make([]Activity, len(t.Activities))
	for i, a := range t.Activities {
		c.Activities[i] = a.clone()
	}
	// Flight and Hotel hold only value fields, so copying the slices copies the elements.
	c.Flights = append([]Flight(nil), t.Flights...)
	c.Hotels = append([]Hotel(nil), t.Hotels...)
	c.Messages = append([]ChatMessage(nil), t.Messages...)
	return c
}

// DayKey returns the ISO calendar date (UTC) of t. Two instants belong to the
// same itinerary day exactly when their day keys are equal.
func DayKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// truncateDay returns midnight UTC of the calendar day of t.
func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func cleanDestinations(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if d == "" {
			return nil, Invalid("destinations", "destinations must not contain blank entries")
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, Invalid("destinations", "at least one destination is required")
	}
	return out, nil
}

func cleanPreferences(p Preferences) (Preferences, error) {
	def := DefaultPreferences()
	if p.TravelStyle == "" {
		p.TravelStyle = def.TravelStyle
	}
	if p.Accommodation == "" {
		p.Accommodation = def.Accommodation
	}
	if p.Transportation == "" {
		p.Transportation = def.Transportation
	}
	if !slices.Contains(travelStyles, p.TravelStyle) {
		return Preferences{}, Invalid("preferences.travel_style", fmt.Sprintf("unknown travel style %q", p.TravelStyle))
	}
	if !slices.Contains(accommodations, p.Accommodation) {
		return Preferences{}, Invalid("preferences.accommodation", fmt.Sprintf("unknown accommodation %q", p.Accommodation))
	}
	if !slices.Contains(transportations, p.Transportation) {
		return Preferences{}, Invalid("preferences.transportation", fmt.Sprintf("unknown transportation %q", p.Transportation))
	}
	return p, nil
}
