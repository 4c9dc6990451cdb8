package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ActivityType classifies an itinerary entry.
type ActivityType string

const (
	ActivityTypeFlight     ActivityType = "flight"
	ActivityTypeHotel      ActivityType = "hotel"
	ActivityTypeActivity   ActivityType = "activity"
	ActivityTypeRestaurant ActivityType = "restaurant"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityTypeFlight, ActivityTypeHotel, ActivityTypeActivity, ActivityTypeRestaurant:
		return true
	}
	return false
}

// VoteValue is a collaborator's opinion on a proposed activity.
type VoteValue string

const (
	VoteUp   VoteValue = "up"
	VoteDown VoteValue = "down"
)

// Vote is one user's vote on an activity. A user holds at most one vote per activity.
type Vote struct {
	UserID uuid.UUID `json:"user_id"`
	Value  VoteValue `json:"vote"`
}

// Activity is a single planned item on a given calendar day.
type Activity struct {
	ID               uuid.UUID    `json:"id"`
	Title            string       `json:"title"`
	Type             ActivityType `json:"type"`
	Date             time.Time    `json:"date"`
	StartTime        string       `json:"start_time"` // "15:04"
	Duration         string       `json:"duration,omitempty"`
	Location         string       `json:"location,omitempty"`
	Description      string       `json:"description,omitempty"`
	Cost             float64      `json:"cost"`
	BookingReference string       `json:"booking_reference,omitempty"`
	Category         string       `json:"category,omitempty"`
	Attachments      []string     `json:"attachments,omitempty"`
	CreatedBy        uuid.UUID    `json:"created_by"`
	Status           ItemStatus   `json:"status"`
	Votes            []Vote       `json:"votes,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// ActivityPatch is a partial update of an activity. Nil fields are left untouched.
type ActivityPatch struct {
	Title            *string
	Type             *ActivityType
	Date             *time.Time
	StartTime        *string
	Duration         *string
	Location         *string
	Description      *string
	Cost             *float64
	BookingReference *string
	Category         *string
	Attachments      []string
	Status           *ItemStatus
}

// ActivityCategories is the fixed list offered to clients for Activity.Category.
var ActivityCategories = []string{
	"Sightseeing",
	"Adventure",
	"Dining",
	"Cultural",
	"Shopping",
	"Relaxation",
}

// AddActivity files a new activity on the trip. The activity's calendar day is
// registered in the itinerary if it is not already. The returned value is the
// stored activity with its id, creator and defaults filled in.
func (t *Trip) AddActivity(a Activity, actor uuid.UUID, now time.Time) (Activity, error) {
	a.ID = uuid.New()
	a.CreatedBy = actor
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Votes = nil
	if a.Type == "" {
		a.Type = ActivityTypeActivity
	}
	if a.Status == "" {
		a.Status = ItemPending
	}
	if a.Status != ItemPending {
		return Activity{}, Invalid("status", "new activities start as pending")
	}
	if err := validateActivity(&a); err != nil {
		return Activity{}, err
	}

	t.registerDay(a.Date)
	t.Activities = append(t.Activities, a)
	t.UpdatedAt = now
	return a, nil
}

// UpdateActivity merges p into the activity with the given id. A date change
// moves the activity to the new day; the old day stays registered.
func (t *Trip) UpdateActivity(id uuid.UUID, p ActivityPatch, now time.Time) (Activity, error) {
	i := t.activityIndex(id)
	if i < 0 {
		return Activity{}, fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	a := t.Activities[i].clone()

	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.StartTime != nil {
		a.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		a.Duration = *p.Duration
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Cost != nil {
		a.Cost = *p.Cost
	}
	if p.BookingReference != nil {
		a.BookingReference = *p.BookingReference
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Attachments != nil {
		a.Attachments = append([]string(nil), p.Attachments...)
	}
	if p.Status != nil {
		if err := checkItemTransition("status", a.Status, *p.Status); err != nil {
			return Activity{}, err
		}
		a.Status = *p.Status
	}
	if err := validateActivity(&a); err != nil {
		return Activity{}, err
	}
	a.UpdatedAt = now

	t.registerDay(a.Date)
	t.Activities[i] = a
	t.UpdatedAt = now
	return a, nil
}

// DeleteActivity removes the activity from the trip. Because the itinerary is
// derived, the activity also disappears from its day; the day itself remains.
func (t *Trip) DeleteActivity(id uuid.UUID, now time.Time) error {
	i := t.activityIndex(id)
	if i < 0 {
		return fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	t.Activities = slices.Delete(t.Activities, i, i+1)
	t.UpdatedAt = now
	return nil
}

// Activity returns the activity with the given id.
func (t Trip) Activity(id uuid.UUID) (Activity, error) {
	i := t.activityIndex(id)
	if i < 0 {
		return Activity{}, fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	return t.Activities[i], nil
}

// CastVote records user's vote on an activity, replacing any earlier vote by
// the same user.
func (t *Trip) CastVote(id, user uuid.UUID, v VoteValue, now time.Time) (Activity, error) {
	if v != VoteUp && v != VoteDown {
		return Activity{}, Invalid("vote", fmt.Sprintf("vote must be %q or %q", VoteUp, VoteDown))
	}
	i := t.activityIndex(id)
	if i < 0 {
		return Activity{}, fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}
	a := t.Activities[i].clone()
	replaced := false
	for j := range a.Votes {
		if a.Votes[j].UserID == user {
			a.Votes[j].Value = v
			replaced = true
			break
		}
	}
	if !replaced {
		a.Votes = append(a.Votes, Vote{UserID: user, Value: v})
	}
	a.UpdatedAt = now
	t.Activities[i] = a
	t.UpdatedAt = now
	return a, nil
}

// Tally returns the number of up and down votes on the activity.
func (a Activity) Tally() (up, down int) {
	for _, v := range a.Votes {
		switch v.Value {
		case VoteUp:
			up++
		case VoteDown:
			down++
		}
	}
	return up, down
}

func (t Trip) activityIndex(id uuid.UUID) int {
	return slices.IndexFunc(t.Activities, func(a Activity) bool { return a.ID == id })
}

func (a Activity) clone() Activity {
	c := a
	c.Attachments = append([]string(nil), a.Attachments...)
	c.Votes = append([]Vote(nil), a.Votes...)
	return c
}

// validateActivity enforces the activity rules shared by add and update and
// normalizes whitespace and the date.
func validateActivity(a *Activity) error {
	a.Title = strings.TrimSpace(a.Title)
	a.Location = strings.TrimSpace(a.Location)
	a.Description = strings.TrimSpace(a.Description)
	a.StartTime = strings.TrimSpace(a.StartTime)

	if a.Title == "" {
		return Invalid("title", "title is required")
	}
	if !a.Type.Valid() {
		return Invalid("type", fmt.Sprintf("unknown activity type %q", a.Type))
	}
	if a.Date.IsZero() {
		return Invalid("date", "date is required")
	}
	if a.StartTime == "" {
		return Invalid("start_time", "start_time is required")
	}
	st, err := time.Parse("15:04", a.StartTime)
	if err != nil {
		return Invalid("start_time", "start_time must be formatted HH:MM")
	}
	a.StartTime = st.Format("15:04")
	if a.Cost < 0 {
		return Invalid("cost", "cost must not be negative")
	}
	if !a.Status.Valid() {
		return Invalid("status", fmt.Sprintf("unknown status %q", a.Status))
	}
	a.Date = truncateDay(a.Date)
	return nil
}
