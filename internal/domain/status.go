package domain

import "fmt"

// LifecycleStatus is the planning pipeline of a trip.
// Transitions are forward-only: planning → upcoming → ongoing → completed.
type LifecycleStatus string

const (
	StatusPlanning  LifecycleStatus = "planning"
	StatusUpcoming  LifecycleStatus = "upcoming"
	StatusOngoing   LifecycleStatus = "ongoing"
	StatusCompleted LifecycleStatus = "completed"
)

var lifecycleRank = map[LifecycleStatus]int{
	StatusPlanning:  0,
	StatusUpcoming:  1,
	StatusOngoing:   2,
	StatusCompleted: 3,
}

// Valid reports whether s is a known lifecycle status.
func (s LifecycleStatus) Valid() bool {
	_, ok := lifecycleRank[s]
	return ok
}

// CanTransitionTo reports whether a trip may move from s to next.
// Staying on the same status is allowed; skipping forward is allowed.
func (s LifecycleStatus) CanTransitionTo(next LifecycleStatus) bool {
	from, ok := lifecycleRank[s]
	if !ok {
		return false
	}
	to, ok := lifecycleRank[next]
	if !ok {
		return false
	}
	return to >= from
}

// ModerationStatus is the admin-only overlay on a trip. It lives in its own
// field so that approving or rejecting a trip never touches its lifecycle.
type ModerationStatus string

const (
	ModerationNone      ModerationStatus = ""
	ModerationConfirmed ModerationStatus = "confirmed"
	ModerationRejected  ModerationStatus = "rejected"
)

// Valid reports whether s is a known moderation status.
func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationNone, ModerationConfirmed, ModerationRejected:
		return true
	}
	return false
}

// NormalizeLegacyStatus splits a single legacy status value, which may hold
// either a lifecycle or a moderation value, into the two dimensions.
// Unknown values fall back to planning.
func NormalizeLegacyStatus(raw string) (LifecycleStatus, ModerationStatus) {
	switch raw {
	case string(ModerationConfirmed), string(ModerationRejected):
		return StatusPlanning, ModerationStatus(raw)
	}
	if s := LifecycleStatus(raw); s.Valid() {
		return s, ModerationNone
	}
	return StatusPlanning, ModerationNone
}

// ItemStatus is the booking state shared by activities, flights and hotels.
// pending → confirmed | rejected; both targets are terminal.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemConfirmed ItemStatus = "confirmed"
	ItemRejected  ItemStatus = "rejected"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemPending, ItemConfirmed, ItemRejected:
		return true
	}
	return false
}

// checkItemTransition returns a *FieldError when an item may not move from
// "from" to "to". Re-applying the current status is a no-op.
func checkItemTransition(field string, from, to ItemStatus) error {
	if !to.Valid() {
		return Invalid(field, fmt.Sprintf("unknown status %q", to))
	}
	if from == to {
		return nil
	}
	if from == ItemPending {
		return nil
	}
	return Invalid(field, fmt.Sprintf("cannot change status from %s to %s", from, to))
}
