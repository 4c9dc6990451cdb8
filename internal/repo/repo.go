// Package repo contains all persistence logic for the trip planner.
// Each resource has an interface and three implementations: Postgres (pgx),
// SQLite (database/sql over modernc.org/sqlite) and an in-memory store.
// No business logic lives here, only storage and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// TripRepo defines the persistence operations for the Trip aggregate.
// A trip is stored as one document plus a few indexed columns; every write
// replaces the whole document.
type TripRepo interface {
	// Create inserts a new trip and returns it with Version set to 1.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// Update replaces the stored trip if its version still equals trip.Version
	// and returns the trip with the incremented version. A stale version yields
	// domain.ErrConflict; a missing trip yields domain.ErrNotFound. A document
	// whose end date precedes its start date is rejected with domain.ErrValidation.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListForUser returns the trips the user created or accepted an invitation
	// to, ordered by start date ascending, and the total count.
	ListForUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// ListInvitations returns trips on which the user has a pending invitation.
	ListInvitations(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)

	// ListAll returns every trip ordered by start date descending.
	ListAll(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// CountByStatus counts trips in the given lifecycle status; "" counts all trips.
	CountByStatus(ctx context.Context, status domain.LifecycleStatus) (int, error)

	// CountByMonth counts trips by the calendar month they were created in,
	// oldest month first.
	CountByMonth(ctx context.Context) ([]domain.MonthlyCount, error)
}

// UserRepo defines the persistence operations for user accounts.
type UserRepo interface {
	// Create inserts a user. A duplicate email is a validation error on "email".
	Create(ctx context.Context, u domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	// GetByEmail expects an already normalized address.
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// GetByIDs returns the users that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// Update writes the name, role and password hash of an existing user.
	Update(ctx context.Context, u domain.User) (domain.User, error)
	// Delete removes a user together with the trips they created and their
	// activity log entries. Collaborator entries on other trips are kept.
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns users newest first and the total count.
	List(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error)
}

// AuditRepo stores the append-only booking activity log.
type AuditRepo interface {
	Record(ctx context.Context, e domain.AuditEntry) error
	// Recent returns the newest entries first with UserEmail populated.
	Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// Repos bundles one implementation of every repository.
type Repos struct {
	Trips TripRepo
	Users UserRepo
	Audit AuditRepo
}

// encodeTrip serializes the aggregate into its stored document form.
func encodeTrip(t domain.Trip) ([]byte, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode trip document: %w", err)
	}
	return raw, nil
}

// decodeTrip parses a stored document. The version column is authoritative.
// Documents written before the lifecycle and moderation statuses were split
// carry a single status value, which is normalized here.
func decodeTrip(raw []byte, version int64) (domain.Trip, error) {
	var t domain.Trip
	if err := json.Unmarshal(raw, &t); err != nil {
		return domain.Trip{}, fmt.Errorf("decode trip document: %w", err)
	}
	t.Version = version
	if !t.Status.Valid() {
		lifecycle, moderation := domain.NormalizeLegacyStatus(string(t.Status))
		t.Status = lifecycle
		if t.ModerationStatus == domain.ModerationNone {
			t.ModerationStatus = moderation
		}
	}
	return t, nil
}

// dateRangeViolation is returned when the store's date range check rejects a write.
var dateRangeViolation = domain.Invalid("end_date", "end_date must not be before start_date")

// emailTaken is returned when the email unique constraint rejects a write.
var emailTaken = domain.Invalid("email", "email is already registered")

func monthLabel(year int, month time.Month, count int) domain.MonthlyCount {
	return domain.MonthlyCount{Month: month.String()[:3], Year: year, Count: count}
}
