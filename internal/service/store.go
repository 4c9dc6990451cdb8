package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// TripStore is the single entry point for reading and changing a trip.
// Within one process at most one mutation per trip runs at a time; across
// processes the repo's version check turns a lost update into
// domain.ErrConflict.
type TripStore struct {
	trips repo.TripRepo
	locks *keyedMutex
	now   func() time.Time
}

// NewTripStore returns a TripStore persisting through trips.
func NewTripStore(trips repo.TripRepo) *TripStore {
	return &TripStore{trips: trips, locks: newKeyedMutex(), now: time.Now}
}

// Create persists a trip built by domain.NewTrip.
func (s *TripStore) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return s.trips.Create(ctx, trip)
}

// Load returns the trip if actor holds capability c on it.
// A missing trip is domain.ErrNotFound whoever asks.
func (s *TripStore) Load(ctx context.Context, tripID, actor uuid.UUID, c domain.Capability) (domain.Trip, error) {
	if actor == uuid.Nil {
		return domain.Trip{}, domain.ErrUnauthenticated
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := domain.Authorize(trip, actor, c); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

// Mutate applies fn to the trip on behalf of actor and persists the result in
// one write. fn works on a copy; if it fails nothing is stored. The returned
// trip carries the new version.
func (s *TripStore) Mutate(ctx context.Context, tripID, actor uuid.UUID, c domain.Capability, fn func(t *domain.Trip, now time.Time) error) (domain.Trip, error) {
	if actor == uuid.Nil {
		return domain.Trip{}, domain.ErrUnauthenticated
	}
	return s.mutate(ctx, tripID, func(t domain.Trip) error {
		return domain.Authorize(t, actor, c)
	}, fn)
}

// mutate is Mutate with a caller-supplied access check, for the few
// operations whose rule is not a capability.
func (s *TripStore) mutate(ctx context.Context, tripID uuid.UUID, check func(domain.Trip) error, fn func(t *domain.Trip, now time.Time) error) (domain.Trip, error) {
	unlock, err := s.locks.lock(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	defer unlock()

	stored, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := check(stored); err != nil {
		return domain.Trip{}, err
	}

	next := stored.Clone()
	if err := fn(&next, s.now().UTC()); err != nil {
		return domain.Trip{}, err
	}
	return s.trips.Update(ctx, next)
}

// Delete removes the trip if actor may delete it.
func (s *TripStore) Delete(ctx context.Context, tripID, actor uuid.UUID) error {
	unlock, err := s.locks.lock(ctx, tripID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.Load(ctx, tripID, actor, domain.CapDeleteTrip); err != nil {
		return err
	}
	return s.trips.Delete(ctx, tripID)
}

// keyedMutex hands out one lock per trip id. Entries are dropped once no
// goroutine holds or waits for them.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*keyedLock
}

type keyedLock struct {
	sem  chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[uuid.UUID]*keyedLock{}}
}

// lock blocks until the lock for id is held or ctx is done.
func (k *keyedMutex) lock(ctx context.Context, id uuid.UUID) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &keyedLock{sem: make(chan struct{}, 1)}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	select {
	case l.sem <- struct{}{}:
		return func() {
			<-l.sem
			k.release(id, l)
		}, nil
	case <-ctx.Done():
		k.release(id, l)
		return nil, fmt.Errorf("wait for trip lock: %w", ctx.Err())
	}
}

func (k *keyedMutex) release(id uuid.UUID, l *keyedLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, id)
	}
}
