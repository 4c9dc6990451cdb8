package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// TripService implements trip-level operations: the trip's own fields, its
// collaborators and the listings a user sees.
type TripService struct {
	store *TripStore
	trips repo.TripRepo
	users repo.UserRepo
	fx    Effects
}

// NewTripService constructs a TripService.
func NewTripService(store *TripStore, trips repo.TripRepo, users repo.UserRepo, fx Effects) *TripService {
	return &TripService{store: store, trips: trips, users: users, fx: fx}
}

// Create validates and persists a new trip owned by actor.
// Returns domain.ErrValidation if the fields are invalid; nothing is stored then.
func (s *TripService) Create(ctx context.Context, actor uuid.UUID, input domain.Trip) (domain.Trip, error) {
	if actor == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", domain.ErrUnauthenticated)
	}
	trip, err := domain.NewTrip(actor, input, s.store.now().UTC())
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	created, err := s.store.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	s.fx.record(ctx, actor, domain.AuditBookTrip, fmt.Sprintf("trip %s: %s", created.ID, created.Title), created.CreatedAt)
	s.fx.publish(ctx, notify.TripCreated, created, actor, uuid.Nil)
	return created, nil
}

// Get returns a trip the actor may read.
func (s *TripService) Get(ctx context.Context, actor, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// Update merges patch into the trip's own fields.
func (s *TripService) Update(ctx context.Context, actor, tripID uuid.UUID, patch domain.TripPatch) (domain.Trip, error) {
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapUpdateTrip, func(t *domain.Trip, now time.Time) error {
		return t.ApplyPatch(patch, now)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Update: %w", err)
	}
	s.fx.publish(ctx, notify.TripUpdated, trip, actor, uuid.Nil)
	return trip, nil
}

// Delete removes the trip. Only its creator may do so.
func (s *TripService) Delete(ctx context.Context, actor, tripID uuid.UUID) error {
	if err := s.store.Delete(ctx, tripID, actor); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	s.fx.publish(ctx, notify.TripDeleted, domain.Trip{ID: tripID, UpdatedAt: s.store.now().UTC()}, actor, uuid.Nil)
	return nil
}

// List returns the trips the actor created or joined, by start date, and the
// total number of such trips.
func (s *TripService) List(ctx context.Context, actor uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.trips.ListForUser(ctx, actor, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.List: %w", err)
	}
	return trips, total, nil
}

// Invitations returns the trips the actor has been invited to and not yet answered.
func (s *TripService) Invitations(ctx context.Context, actor uuid.UUID) ([]domain.Trip, error) {
	trips, err := s.trips.ListInvitations(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Invitations: %w", err)
	}
	return trips, nil
}

// Invite adds a pending collaborator. The invitee must have an account.
func (s *TripService) Invite(ctx context.Context, actor, tripID, invitee uuid.UUID, role domain.CollaboratorRole) (domain.Collaborator, error) {
	var added domain.Collaborator
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapManageCollaborators, func(t *domain.Trip, now time.Time) error {
		// Looked up only once the actor is authorized, so strangers cannot learn which account ids exist.
		if invitee != uuid.Nil {
			if _, err := s.users.GetByID(ctx, invitee); err != nil {
				return fmt.Errorf("invitee: %w", err)
			}
		}
		var err error
		added, err = t.Invite(invitee, role, now)
		return err
	})
	if err != nil {
		return domain.Collaborator{}, fmt.Errorf("service.TripService.Invite: %w", err)
	}
	s.fx.publish(ctx, notify.CollaboratorInvited, trip, actor, invitee)
	return added, nil
}

// Respond records the actor's answer to their own pending invitation.
// The trip's creator is forbidden; a caller with no invitation gets
// domain.ErrNotFound.
func (s *TripService) Respond(ctx context.Context, actor, tripID uuid.UUID, accept bool) (domain.Trip, error) {
	if actor == uuid.Nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Respond: %w", domain.ErrUnauthenticated)
	}
	trip, err := s.store.mutate(ctx, tripID, func(t domain.Trip) error {
		if t.CreatorID == actor {
			return fmt.Errorf("creator cannot respond to an invitation: %w", domain.ErrForbidden)
		}
		return nil
	}, func(t *domain.Trip, now time.Time) error {
		_, err := t.Respond(actor, accept, now)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Respond: %w", err)
	}
	s.fx.publish(ctx, notify.CollaboratorResponded, trip, actor, actor)
	return trip, nil
}

// RemoveCollaborator drops a collaborator entry whatever its status.
func (s *TripService) RemoveCollaborator(ctx context.Context, actor, tripID, user uuid.UUID) error {
	trip, err := s.store.Mutate(ctx, tripID, actor, domain.CapManageCollaborators, func(t *domain.Trip, now time.Time) error {
		return t.RemoveCollaborator(user, now)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.RemoveCollaborator: %w", err)
	}
	s.fx.publish(ctx, notify.CollaboratorRemoved, trip, actor, user)
	return nil
}

// Itinerary returns the trip's per-day plan.
func (s *TripService) Itinerary(ctx context.Context, actor, tripID uuid.UUID) ([]domain.DayPlan, error) {
	trip, err := s.store.Load(ctx, tripID, actor, domain.CapRead)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Itinerary: %w", err)
	}
	return trip.Itinerary(), nil
}

