// Package service contains the business logic of the trip planner.
// Services authorize the caller, apply domain rules and orchestrate repo
// calls. No SQL lives here; services depend on repo interfaces only.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// Effects bundles the best-effort work that follows a committed mutation.
// Failures are logged at warn and never reach the caller. Nil fields are
// allowed: a nil Audit skips the activity log, a nil Events publishes nothing.
type Effects struct {
	Audit  repo.AuditRepo
	Events notify.Publisher
	Log    *slog.Logger
}

func (e Effects) logger() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

func (e Effects) publish(ctx context.Context, typ notify.EventType, trip domain.Trip, actor, subject uuid.UUID) {
	if e.Events == nil {
		return
	}
	ev := notify.TripEvent{Type: typ, TripID: trip.ID, ActorID: actor, SubjectID: subject, At: trip.UpdatedAt}
	if err := e.Events.Publish(ctx, ev); err != nil {
		e.logger().WarnContext(ctx, "publish trip event failed",
			"event", string(typ), "trip_id", trip.ID.String(), "error", err)
	}
}

func (e Effects) record(ctx context.Context, actor uuid.UUID, action domain.AuditAction, details string, at time.Time) {
	if e.Audit == nil {
		return
	}
	err := e.Audit.Record(ctx, domain.AuditEntry{
		ID:        uuid.New(),
		UserID:    actor,
		Action:    action,
		Details:   details,
		CreatedAt: at,
	})
	if err != nil {
		e.logger().WarnContext(ctx, "record activity log failed",
			"action", string(action), "user_id", actor.String(), "error", err)
	}
}
