package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/notify"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/internal/service"
)

// ---- mocks -----------------------------------------------------------------

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID         func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	update          func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete          func(ctx context.Context, id uuid.UUID) error
	listForUser     func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	listInvitations func(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)
	listAll         func(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	countByStatus   func(ctx context.Context, status domain.LifecycleStatus) (int, error)
	countByMonth    func(ctx context.Context) ([]domain.MonthlyCount, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) ListForUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listForUser(ctx, userID, p)
}
func (m *mockTripRepo) ListInvitations(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	return m.listInvitations(ctx, userID)
}
func (m *mockTripRepo) ListAll(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listAll(ctx, p)
}
func (m *mockTripRepo) CountByStatus(ctx context.Context, status domain.LifecycleStatus) (int, error) {
	return m.countByStatus(ctx, status)
}
func (m *mockTripRepo) CountByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	return m.countByMonth(ctx)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockAuditRepo is a hand-written test double for repo.AuditRepo.
type mockAuditRepo struct {
	record func(ctx context.Context, e domain.AuditEntry) error
	recent func(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

func (m *mockAuditRepo) Record(ctx context.Context, e domain.AuditEntry) error { return m.record(ctx, e) }
func (m *mockAuditRepo) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	return m.recent(ctx, limit)
}

var _ repo.AuditRepo = (*mockAuditRepo)(nil)

// recordingPublisher keeps every published event. Set err to make Publish fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []notify.TripEvent
	err    error
}

var _ notify.Publisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) Publish(_ context.Context, e notify.TripEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []notify.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notify.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// ---- fixture ---------------------------------------------------------------

// env wires every service over in-memory repos with three accounts: the
// trip owner, a friend the tests may invite, and a stranger.
type env struct {
	repos      repo.Repos
	events     *recordingPublisher
	store      *service.TripStore
	trips      *service.TripService
	activities *service.ActivityService
	bookings   *service.BookingService
	chat       *service.ChatService
	admin      *service.AdminService
	export     *service.ExportService

	owner, friend, stranger, adminUser domain.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	repos := repo.NewMemoryRepos()
	events := &recordingPublisher{}
	fx := service.Effects{Audit: repos.Audit, Events: events}
	store := service.NewTripStore(repos.Trips)

	e := &env{
		repos:      repos,
		events:     events,
		store:      store,
		trips:      service.NewTripService(store, repos.Trips, repos.Users, fx),
		activities: service.NewActivityService(store, fx),
		bookings:   service.NewBookingService(store, fx),
		chat:       service.NewChatService(store, fx),
		admin:      service.NewAdminService(store, repos, fx),
		export:     service.NewExportService(store),
	}
	e.owner = e.addUser(t, "owner@example.com", domain.UserRoleUser)
	e.friend = e.addUser(t, "friend@example.com", domain.UserRoleUser)
	e.stranger = e.addUser(t, "stranger@example.com", domain.UserRoleUser)
	e.adminUser = e.addUser(t, "admin@example.com", domain.UserRoleAdmin)
	return e
}

func (e *env) addUser(t *testing.T, email string, role domain.UserRole) domain.User {
	t.Helper()
	u, err := e.repos.Users.Create(context.Background(), domain.User{
		ID: uuid.New(), Email: email, Name: email, PasswordHash: "x", Role: role, CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return u
}

// japanTrip is the trip most tests start from: 1-10 April 2025, owned by e.owner.
func (e *env) japanTrip(t *testing.T) domain.Trip {
	t.Helper()
	trip, err := e.trips.Create(context.Background(), e.owner.ID, domain.Trip{
		Title:        "Japan",
		StartDate:    day(2025, 4, 1),
		EndDate:      day(2025, 4, 10),
		Destinations: []string{"Tokyo", "Kyoto"},
	})
	require.NoError(t, err)
	return trip
}

// join invites user onto the trip and accepts on their behalf.
func (e *env) join(t *testing.T, tripID uuid.UUID, user domain.User, role domain.CollaboratorRole) {
	t.Helper()
	ctx := context.Background()
	_, err := e.trips.Invite(ctx, e.owner.ID, tripID, user.ID, role)
	require.NoError(t, err)
	_, err = e.trips.Respond(ctx, user.ID, tripID, true)
	require.NoError(t, err)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
