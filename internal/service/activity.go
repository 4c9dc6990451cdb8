package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
)

// ActivityService implements itinerary activities. Every mutation rewrites the
// whole trip in one write, so the flat activity list and the per-day plan are
// never observed out of step.
type ActivityService struct {
	store *TripStore
	fx    Effects
}

// NewActivityService constructs an ActivityService.
func NewActivityService(store *TripStore, fx Effects) *ActivityService {
	return &ActivityService{store: store, fx: fx}
}

// Add files a new activity under the day of a.Date and returns the stored
// activity together with the updated trip.
func (s *ActivityService) Add(ctx context.Context, actor, tripID uuid.UUID, a domain.Activity) (domain.Activity, domain.Trip, error) {
	var added domain.Activity
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		added, err = t.AddActivity(a, actor, now)
		return err
	})
	if err != nil {
		return domain.Activity{}, domain.Trip{}, fmt.Errorf("service.ActivityService.Add: %w", err)
	}
	s.fx.record(ctx, actor, domain.AuditBookActivity, fmt.Sprintf("trip %s: %s", trip.ID, added.Title), added.CreatedAt)
	s.fx.publish(ctx, notify.ActivityAdded, trip, actor, added.ID)
	return added, trip, nil
}

// AddToDay is Add with the day given explicitly; it overrides a.Date.
func (s *ActivityService) AddToDay(ctx context.Context, actor, tripID uuid.UUID, day time.Time, a domain.Activity) (domain.Activity, domain.Trip, error) {
	a.Date = day
	return s.Add(ctx, actor, tripID, a)
}

// List returns the trip's activities in the order they were added.
func (s *ActivityService) List(ctx context.Context, actor, tripID uuid.UUID) ([]domain.Activity, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.List: %w", err)
	}
	if trip.Activities == nil {
		return []domain.Activity{}, nil
	}
	return trip.Activities, nil
}

// Get returns one activity of the trip.
func (s *ActivityService) Get(ctx context.Context, actor, tripID, activityID uuid.UUID) (domain.Activity, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Get: %w", err)
	}
	a, err := trip.Activity(activityID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Get: %w", err)
	}
	return a, nil
}

// Update merges patch into the activity. A new date moves it to that day.
func (s *ActivityService) Update(ctx context.Context, actor, tripID, activityID uuid.UUID, patch domain.ActivityPatch) (domain.Activity, error) {
	var updated domain.Activity
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		updated, err = t.UpdateActivity(activityID, patch, now)
		return err
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	s.fx.publish(ctx, notify.ActivityUpdated, trip, actor, activityID)
	return updated, nil
}

// Delete removes the activity from the trip and from its day.
func (s *ActivityService) Delete(ctx context.Context, actor, tripID, activityID uuid.UUID) error {
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		return t.DeleteActivity(activityID, now)
	})
	if err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	s.fx.publish(ctx, notify.ActivityDeleted, trip, actor, activityID)
	return nil
}

// Vote records the actor's vote, replacing any earlier vote of theirs.
func (s *ActivityService) Vote(ctx context.Context, actor, tripID, activityID uuid.UUID, v domain.VoteValue) (domain.Activity, error) {
	var voted domain.Activity
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapWrite, func(t *domain.Trip, now time.Time) error {
		var err error
		voted, err = t.CastVote(activityID, actor, v, now)
		return err
	})
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Vote: %w", err)
	}
	s.fx.publish(ctx, notify.ActivityVoted, trip, actor, activityID)
	return voted, nil
}

// Categories returns the fixed list of activity categories.
func (s *ActivityService) Categories() []string {
	return slices.Clone(domain.ActivityCategories)
}
