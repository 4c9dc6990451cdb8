package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Capability is an action a user may attempt on a trip.
type Capability string

const (
	CapRead                Capability = "read"
	CapWrite               Capability = "write"
	CapUpdateTrip          Capability = "update-trip"
	CapDeleteTrip          Capability = "delete-trip"
	CapManageCollaborators Capability = "manage-collaborators"
)

// Authorize decides whether user may exercise c on trip.
//
// The creator may do anything. An accepted collaborator may read and write
// the trip's sub-resources; replacing the trip's own fields additionally
// requires the editor role. Deleting the trip and managing collaborators
// are reserved for the creator. Everybody else is forbidden, and uuid.Nil
// is treated as an anonymous caller.
func Authorize(trip Trip, user uuid.UUID, c Capability) error {
	if user == uuid.Nil {
		return ErrUnauthenticated
	}
	if user == trip.CreatorID {
		return nil
	}
	collab, ok := trip.Collaborator(user)
	if !ok || collab.Status != InviteAccepted {
		return fmt.Errorf("%s on trip %s: %w", c, trip.ID, ErrForbidden)
	}
	switch c {
	case CapRead, CapWrite:
		return nil
	case CapUpdateTrip:
		if collab.Role == RoleEditor {
			return nil
		}
	}
	return fmt.Errorf("%s on trip %s: %w", c, trip.ID, ErrForbidden)
}

// IsMember reports whether user created the trip or accepted an invitation to it.
func (t Trip) IsMember(user uuid.UUID) bool {
	if user == t.CreatorID {
		return true
	}
	c, ok := t.Collaborator(user)
	return ok && c.Status == InviteAccepted
}

// HasPendingInvite reports whether user has an unanswered invitation to the trip.
func (t Trip) HasPendingInvite(user uuid.UUID) bool {
	c, ok := t.Collaborator(user)
	return ok && c.Status == InvitePending
}
