package repo

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// NewMemoryRepos returns repositories that keep everything in process memory.
// They apply the same version and date range checks as the SQL stores and are
// used for local development and service tests.
func NewMemoryRepos() Repos {
	trips := &memTripRepo{trips: map[uuid.UUID]domain.Trip{}}
	audit := &memAuditRepo{}
	users := &memUserRepo{byID: map[uuid.UUID]domain.User{}}
	audit.users = users
	// Mirrors ON DELETE CASCADE in the SQL schemas.
	users.onDelete = func(id uuid.UUID) {
		trips.deleteByCreator(id)
		audit.deleteByUser(id)
	}
	return Repos{Trips: trips, Users: users, Audit: audit}
}

// ---- trips ------------------------------------------------------------------

type memTripRepo struct {
	mu    sync.RWMutex
	trips map[uuid.UUID]domain.Trip
}

func (r *memTripRepo) Create(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	if err := domain.CheckDateRange(trip.StartDate, trip.EndDate); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", dateRangeViolation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.trips[trip.ID]; dup {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: duplicate id %s", trip.ID)
	}
	trip.Version = 1
	r.trips[trip.ID] = trip.Clone()
	return trip, nil
}

func (r *memTripRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.trips[id]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", domain.ErrNotFound)
	}
	return t.Clone(), nil
}

func (r *memTripRepo) Update(_ context.Context, trip domain.Trip) (domain.Trip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.trips[trip.ID]
	if !ok {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrNotFound)
	}
	if stored.Version != trip.Version {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", domain.ErrConflict)
	}
	if err := domain.CheckDateRange(trip.StartDate, trip.EndDate); err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", dateRangeViolation)
	}
	trip.Version++
	r.trips[trip.ID] = trip.Clone()
	return trip, nil
}

func (r *memTripRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trips[id]; !ok {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	delete(r.trips, id)
	return nil
}

func (r *memTripRepo) ListForUser(_ context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all := r.filter(func(t domain.Trip) bool { return t.IsMember(userID) })
	slices.SortStableFunc(all, byStartThenCreated)
	lo, hi := p.Window(len(all))
	return all[lo:hi], int64(len(all)), nil
}

func (r *memTripRepo) ListInvitations(_ context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	all := r.filter(func(t domain.Trip) bool { return t.HasPendingInvite(userID) })
	slices.SortStableFunc(all, byStartThenCreated)
	return all, nil
}

func (r *memTripRepo) ListAll(_ context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	all := r.filter(func(domain.Trip) bool { return true })
	slices.SortStableFunc(all, func(a, b domain.Trip) int { return byStartThenCreated(b, a) })
	lo, hi := p.Window(len(all))
	return all[lo:hi], int64(len(all)), nil
}

func (r *memTripRepo) CountByStatus(_ context.Context, status domain.LifecycleStatus) (int, error) {
	return len(r.filter(func(t domain.Trip) bool { return status == "" || t.Status == status })), nil
}

func (r *memTripRepo) CountByMonth(_ context.Context) ([]domain.MonthlyCount, error) {
	counts := map[time.Time]int{}
	for _, t := range r.filter(func(domain.Trip) bool { return true }) {
		c := t.CreatedAt.UTC()
		counts[time.Date(c.Year(), c.Month(), 1, 0, 0, 0, 0, time.UTC)]++
	}
	months := make([]time.Time, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	slices.SortFunc(months, time.Time.Compare)

	var out []domain.MonthlyCount
	for _, m := range months {
		out = append(out, monthLabel(m.Year(), m.Month(), counts[m]))
	}
	return out, nil
}

func (r *memTripRepo) filter(keep func(domain.Trip) bool) []domain.Trip {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Trip{}
	for _, t := range r.trips {
		if keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (r *memTripRepo) deleteByCreator(creator uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.trips {
		if t.CreatorID == creator {
			delete(r.trips, id)
		}
	}
}

func byStartThenCreated(a, b domain.Trip) int {
	return cmp.Or(a.StartDate.Compare(b.StartDate), a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
}

// ---- users ------------------------------------------------------------------

type memUserRepo struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]domain.User
	onDelete func(uuid.UUID)
}

func (r *memUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", emailTaken)
		}
	}
	r.byID[u.ID] = u
	return u, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", domain.ErrNotFound)
	}
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", domain.ErrNotFound)
}

func (r *memUserRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memUserRepo) TouchLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("repo.UserRepo.TouchLogin: %w", domain.ErrNotFound)
	}
	u.LastLoginAt = &at
	r.byID[id] = u
	return nil
}

func (r *memUserRepo) Update(_ context.Context, u domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[u.ID]
	if !ok {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", domain.ErrNotFound)
	}
	stored.Name = u.Name
	stored.Role = u.Role
	stored.PasswordHash = u.PasswordHash
	r.byID[u.ID] = stored
	return stored, nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	_, ok := r.byID[id]
	delete(r.byID, id)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("repo.UserRepo.Delete: %w", domain.ErrNotFound)
	}
	if r.onDelete != nil {
		r.onDelete(id)
	}
	return nil
}

func (r *memUserRepo) List(_ context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
	r.mu.RLock()
	all := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		all = append(all, u)
	}
	r.mu.RUnlock()

	slices.SortFunc(all, func(a, b domain.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	lo, hi := p.Window(len(all))
	return all[lo:hi], int64(len(all)), nil
}

// ---- activity log -----------------------------------------------------------

type memAuditRepo struct {
	mu      sync.Mutex
	users   *memUserRepo
	entries []domain.AuditEntry
}

func (r *memAuditRepo) Record(_ context.Context, e domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) deleteByUser(user uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.DeleteFunc(r.entries, func(e domain.AuditEntry) bool { return e.UserID == user })
}

func (r *memAuditRepo) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	out := make([]domain.AuditEntry, 0, min(limit, len(r.entries)))
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.entries[i])
	}
	r.mu.Unlock()

	for i := range out {
		if u, err := r.users.GetByID(ctx, out[i].UserID); err == nil {
			out[i].UserEmail = u.Email
		}
	}
	return out, nil
}
