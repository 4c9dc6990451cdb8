package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// RecentActivityLimit is how many activity log entries the admin dashboard shows.
const RecentActivityLimit = 50

// AdminService implements the admin dashboard: cross-user reporting and trip
// moderation. Every method re-checks that the actor's account is an admin.
type AdminService struct {
	store *TripStore
	trips repo.TripRepo
	users repo.UserRepo
	audit repo.AuditRepo
	fx    Effects
}

// NewAdminService constructs an AdminService.
func NewAdminService(store *TripStore, repos repo.Repos, fx Effects) *AdminService {
	return &AdminService{store: store, trips: repos.Trips, users: repos.Users, audit: repos.Audit, fx: fx}
}

func (s *AdminService) requireAdmin(ctx context.Context, actor uuid.UUID) error {
	if actor == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	u, err := s.users.GetByID(ctx, actor)
	if err != nil {
		return fmt.Errorf("load admin account: %w", err)
	}
	if u.Role != domain.UserRoleAdmin {
		return fmt.Errorf("admin role required: %w", domain.ErrForbidden)
	}
	return nil
}

// ListTrips summarizes every trip, newest start date first.
func (s *AdminService) ListTrips(ctx context.Context, actor uuid.UUID, p domain.PaginationParams) ([]domain.TripSummary, int64, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, 0, fmt.Errorf("service.AdminService.ListTrips: %w", err)
	}
	trips, total, err := s.trips.ListAll(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.AdminService.ListTrips: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(trips))
	seen := map[uuid.UUID]bool{}
	for _, t := range trips {
		if !seen[t.CreatorID] {
			seen[t.CreatorID] = true
			ids = append(ids, t.CreatorID)
		}
	}
	creators, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("service.AdminService.ListTrips: creators: %w", err)
	}
	refs := make(map[uuid.UUID]domain.UserRef, len(creators))
	for _, u := range creators {
		refs[u.ID] = domain.UserRef{ID: u.ID, Email: u.Email, Name: u.Name}
	}

	out := make([]domain.TripSummary, 0, len(trips))
	for _, t := range trips {
		out = append(out, domain.Summarize(t, refs[t.CreatorID]))
	}
	return out, total, nil
}

// ListUsers returns accounts newest first. Password hashes are cleared.
func (s *AdminService) ListUsers(ctx context.Context, actor uuid.UUID, p domain.PaginationParams) ([]domain.User, int64, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, 0, fmt.Errorf("service.AdminService.ListUsers: %w", err)
	}
	users, total, err := s.users.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.AdminService.ListUsers: %w", err)
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, total, nil
}

// Statistics runs the dashboard counters concurrently.
func (s *AdminService) Statistics(ctx context.Context, actor uuid.UUID) (domain.TripStats, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return domain.TripStats{}, fmt.Errorf("service.AdminService.Statistics: %w", err)
	}

	var stats domain.TripStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalTrips, err = s.trips.CountByStatus(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		stats.OngoingTrips, err = s.trips.CountByStatus(gctx, domain.StatusOngoing)
		return err
	})
	g.Go(func() (err error) {
		stats.CompletedTrips, err = s.trips.CountByStatus(gctx, domain.StatusCompleted)
		return err
	})
	g.Go(func() (err error) {
		stats.MonthlyTrend, err = s.trips.CountByMonth(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TripStats{}, fmt.Errorf("service.AdminService.Statistics: %w", err)
	}
	if stats.MonthlyTrend == nil {
		stats.MonthlyTrend = []domain.MonthlyCount{}
	}
	return stats, nil
}

// RecentActivity returns the newest activity log entries.
func (s *AdminService) RecentActivity(ctx context.Context, actor uuid.UUID) ([]domain.AuditEntry, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, fmt.Errorf("service.AdminService.RecentActivity: %w", err)
	}
	entries, err := s.audit.Recent(ctx, RecentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("service.AdminService.RecentActivity: %w", err)
	}
	return entries, nil
}

// UpdateUser edits another account's name or role. An admin cannot drop
// their own admin role, so at least one admin always remains.
func (s *AdminService) UpdateUser(ctx context.Context, actor, userID uuid.UUID, patch domain.UserPatch) (domain.User, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return domain.User{}, fmt.Errorf("service.AdminService.UpdateUser: %w", err)
	}
	if userID == actor && patch.Role != nil && *patch.Role != domain.UserRoleAdmin {
		return domain.User{}, fmt.Errorf("service.AdminService.UpdateUser: %w",
			domain.Invalid("role", "admins cannot remove their own admin role"))
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AdminService.UpdateUser: %w", err)
	}
	if err := patch.Apply(&u); err != nil {
		return domain.User{}, fmt.Errorf("service.AdminService.UpdateUser: %w", err)
	}
	u, err = s.users.Update(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.AdminService.UpdateUser: %w", err)
	}
	u.PasswordHash = ""
	return u, nil
}

// DeleteUser removes an account along with the trips it created.
// Admins cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actor, userID uuid.UUID) error {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return fmt.Errorf("service.AdminService.DeleteUser: %w", err)
	}
	if userID == actor {
		return fmt.Errorf("service.AdminService.DeleteUser: %w",
			domain.Invalid("userId", "admins cannot delete their own account"))
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("service.AdminService.DeleteUser: %w", err)
	}
	s.fx.logger().InfoContext(ctx, "user deleted", "user_id", userID.String(), "admin_id", actor.String())
	return nil
}

// Moderate sets a trip's moderation status. The lifecycle status is untouched.
func (s *AdminService) Moderate(ctx context.Context, actor, tripID uuid.UUID, status domain.ModerationStatus) (domain.Trip, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.AdminService.Moderate: %w", err)
	}
	trip, err := s.store.mutate(ctx, tripID, func(domain.Trip) error { return nil }, func(t *domain.Trip, now time.Time) error {
		return t.Moderate(status, now)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.AdminService.Moderate: %w", err)
	}
	s.fx.publish(ctx, notify.TripModerated, trip, actor, uuid.Nil)
	return trip, nil
}
