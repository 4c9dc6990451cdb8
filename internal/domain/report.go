package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripSummary is the admin listing view of a trip.
type TripSummary struct {
	ID                uuid.UUID
	Title             string
	Creator           UserRef
	StartDate         time.Time
	EndDate           time.Time
	Destinations      []string
	Status            LifecycleStatus
	ModerationStatus  ModerationStatus
	ActivityCount     int
	CollaboratorCount int
}

// UserRef is the public identity of a user embedded in other views.
type UserRef struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// MonthlyCount is the number of trips created in one calendar month.
type MonthlyCount struct {
	Month string // "Jan".."Dec"
	Year  int
	Count int
}

// TripStats is the admin dashboard summary.
type TripStats struct {
	TotalTrips     int
	OngoingTrips   int
	CompletedTrips int
	MonthlyTrend   []MonthlyCount
}

// Summarize builds the admin listing view of t. creator may be zero when the
// account no longer exists.
func Summarize(t Trip, creator UserRef) TripSummary {
	if creator.ID == uuid.Nil {
		creator.ID = t.CreatorID
	}
	return TripSummary{
		ID:                t.ID,
		Title:             t.Title,
		Creator:           creator,
		StartDate:         t.StartDate,
		EndDate:           t.EndDate,
		Destinations:      append([]string(nil), t.Destinations...),
		Status:            t.Status,
		ModerationStatus:  t.ModerationStatus,
		ActivityCount:     len(t.Activities),
		CollaboratorCount: len(t.Collaborators),
	}
}
