// Package notify publishes trip change events to other processes.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names what happened to a trip.
type EventType string

const (
	TripCreated           EventType = "trip.created"
	TripUpdated           EventType = "trip.updated"
	TripDeleted           EventType = "trip.deleted"
	TripModerated         EventType = "trip.moderated"
	CollaboratorInvited   EventType = "collaborator.invited"
	CollaboratorResponded EventType = "collaborator.responded"
	CollaboratorRemoved   EventType = "collaborator.removed"
	ActivityAdded         EventType = "activity.added"
	ActivityUpdated       EventType = "activity.updated"
	ActivityDeleted       EventType = "activity.deleted"
	ActivityVoted         EventType = "activity.voted"
	FlightAdded           EventType = "flight.added"
	FlightUpdated         EventType = "flight.updated"
	FlightDeleted         EventType = "flight.deleted"
	HotelAdded            EventType = "hotel.added"
	HotelUpdated          EventType = "hotel.updated"
	HotelDeleted          EventType = "hotel.deleted"
	ChatPosted            EventType = "chat.posted"
)

// TripEvent is published after a trip mutation has been committed.
// SubjectID identifies the sub-resource the event is about, if any.
type TripEvent struct {
	Type      EventType `json:"type"`
	TripID    uuid.UUID `json:"trip_id"`
	ActorID   uuid.UUID `json:"actor_id"`
	SubjectID uuid.UUID `json:"subject_id,omitzero"`
	At        time.Time `json:"at"`
}

// Publisher delivers trip events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e TripEvent) error
}

// Nop discards every event. It is used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, TripEvent) error { return nil }
