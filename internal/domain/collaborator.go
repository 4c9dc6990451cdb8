package domain

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// CollaboratorRole is recorded on every invitation. Only RoleEditor is
// consulted by the access predicate, and only for full-trip updates.
type CollaboratorRole string

const (
	RoleAdmin  CollaboratorRole = "admin"
	RoleEditor CollaboratorRole = "editor"
	RoleViewer CollaboratorRole = "viewer"
)

// Valid reports whether r is a known collaborator role.
func (r CollaboratorRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// InviteStatus is the invitee's answer to an invitation.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Collaborator is a user other than the creator who was invited to a trip.
type Collaborator struct {
	UserID    uuid.UUID        `json:"user_id"`
	Role      CollaboratorRole `json:"role"`
	Status    InviteStatus     `json:"status"`
	InvitedAt time.Time        `json:"invited_at"`
}

// Invite appends a pending collaborator entry for user. A user may hold at
// most one entry per trip and the creator can never be invited.
func (t *Trip) Invite(user uuid.UUID, role CollaboratorRole, now time.Time) (Collaborator, error) {
	if user == uuid.Nil {
		return Collaborator{}, Invalid("user_id", "user_id is required")
	}
	if role == "" {
		role = RoleEditor
	}
	if !role.Valid() {
		return Collaborator{}, Invalid("role", fmt.Sprintf("unknown role %q", role))
	}
	if user == t.CreatorID {
		return Collaborator{}, Invalid("user_id", "the trip creator cannot be invited")
	}
	if _, ok := t.Collaborator(user); ok {
		return Collaborator{}, ErrAlreadyCollaborator
	}
	c := Collaborator{UserID: user, Role: role, Status: InvitePending, InvitedAt: now}
	t.Collaborators = append(t.Collaborators, c)
	t.UpdatedAt = now
	return c, nil
}

// Respond records the invitee's answer. Only a pending invitation can be answered.
func (t *Trip) Respond(user uuid.UUID, accept bool, now time.Time) (Collaborator, error) {
	i := t.collaboratorIndex(user)
	if i < 0 {
		return Collaborator{}, fmt.Errorf("invitation: %w", ErrNotFound)
	}
	if t.Collaborators[i].Status != InvitePending {
		return Collaborator{}, Invalid("status", fmt.Sprintf("invitation already %s", t.Collaborators[i].Status))
	}
	if accept {
		t.Collaborators[i].Status = InviteAccepted
	} else {
		t.Collaborators[i].Status = InviteDeclined
	}
	t.UpdatedAt = now
	return t.Collaborators[i], nil
}

// RemoveCollaborator deletes the entry for user.
func (t *Trip) RemoveCollaborator(user uuid.UUID, now time.Time) error {
	i := t.collaboratorIndex(user)
	if i < 0 {
		return fmt.Errorf("collaborator %s: %w", user, ErrNotFound)
	}
	t.Collaborators = slices.Delete(t.Collaborators, i, i+1)
	t.UpdatedAt = now
	return nil
}

// Collaborator returns the entry held by user, if any.
func (t Trip) Collaborator(user uuid.UUID) (Collaborator, bool) {
	i := t.collaboratorIndex(user)
	if i < 0 {
		return Collaborator{}, false
	}
	return t.Collaborators[i], true
}

func (t Trip) collaboratorIndex(user uuid.UUID) int {
	return slices.IndexFunc(t.Collaborators, func(c Collaborator) bool { return c.UserID == user })
}
