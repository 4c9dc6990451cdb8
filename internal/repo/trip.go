package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test. Begin on a
// pgx.Tx opens a savepoint, so repo writes stay nested inside the test's
// transaction.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewPostgresRepos returns every repository backed by the provided connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresRepos(conn db) Repos {
	return Repos{
		Trips: NewTripRepo(conn),
		Users: NewUserRepo(conn),
		Audit: NewAuditRepo(conn),
	}
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a Postgres TripRepo.
func NewTripRepo(conn db) TripRepo {
	return &pgTripRepo{db: conn}
}

// Create inserts the trip row and its membership rows in one transaction.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.Version = 1
	doc, err := encodeTrip(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}

	const q = `
		INSERT INTO trips (id, creator_id, title, start_date, end_date, status,
		                   moderation_status, doc, version, created_at, updated_at)
		VALUES (@id, @creator_id, @title, @start_date, @end_date, @status,
		        @moderation_status, @doc, @version, @created_at, @updated_at)`

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, q, tripArgs(trip, doc)); err != nil {
			return err
		}
		return syncMembers(ctx, tx, trip)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapPgError(err))
	}
	return trip, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT doc, version FROM trips WHERE id = @id`

	trip, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

// Update writes the trip only if the stored version matches trip.Version.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	expected := trip.Version
	trip.Version = expected + 1
	doc, err := encodeTrip(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}

	const q = `
		UPDATE trips
		SET title             = @title,
		    start_date        = @start_date,
		    end_date          = @end_date,
		    status            = @status,
		    moderation_status = @moderation_status,
		    doc               = @doc,
		    version           = @version,
		    updated_at        = @updated_at
		WHERE id = @id AND version = @expected`

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		args := tripArgs(trip, doc)
		args["expected"] = expected
		tag, err := tx.Exec(ctx, q, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = @id)`,
				pgx.NamedArgs{"id": trip.ID}).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return domain.ErrConflict
			}
			return domain.ErrNotFound
		}
		return syncMembers(ctx, tx, trip)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", mapPgError(err))
	}
	return trip, nil
}

// Delete removes a trip by primary key. Membership rows cascade.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ListForUser returns the user's own and accepted trips, earliest first.
func (r *pgTripRepo) ListForUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const where = `
		WHERE t.creator_id = @user_id
		   OR EXISTS (SELECT 1 FROM trip_members m
		              WHERE m.trip_id = t.id AND m.user_id = @user_id AND m.status = 'accepted')`

	args := pgx.NamedArgs{"user_id": userID, "limit": p.Limit, "offset": p.Offset()}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips t`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForUser: count: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT t.doc, t.version FROM trips t`+where+`
		ORDER BY t.start_date ASC, t.created_at ASC
		LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForUser: %w", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForUser: %w", err)
	}
	return trips, total, nil
}

// ListInvitations returns trips with a pending invitation for the user.
func (r *pgTripRepo) ListInvitations(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT t.doc, t.version
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		WHERE m.user_id = @user_id AND m.status = 'pending'
		ORDER BY t.start_date ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListInvitations: %w", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListInvitations: %w", err)
	}
	return trips, nil
}

// ListAll returns every trip, latest start date first.
func (r *pgTripRepo) ListAll(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAll: count: %w", err)
	}

	const q = `
		SELECT doc, version FROM trips
		ORDER BY start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}
	return trips, total, nil
}

// CountByStatus counts trips in a lifecycle status, or all trips for "".
func (r *pgTripRepo) CountByStatus(ctx context.Context, status domain.LifecycleStatus) (int, error) {
	const q = `SELECT count(*) FROM trips WHERE @status = '' OR status = @status`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"status": string(status)}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.TripRepo.CountByStatus: %w", err)
	}
	return n, nil
}

// CountByMonth groups trips by the month of created_at (UTC).
func (r *pgTripRepo) CountByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	const q = `
		SELECT date_trunc('month', created_at AT TIME ZONE 'UTC') AS month, count(*)
		FROM trips
		GROUP BY month
		ORDER BY month ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CountByMonth: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyCount
	for rows.Next() {
		var (
			month time.Time
			n     int
		)
		if err := rows.Scan(&month, &n); err != nil {
			return nil, fmt.Errorf("repo.TripRepo.CountByMonth: scan: %w", err)
		}
		out = append(out, monthLabel(month.Year(), month.Month(), n))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CountByMonth: rows: %w", err)
	}
	return out, nil
}

// syncMembers rewrites the membership index of a trip from its collaborator list.
func syncMembers(ctx context.Context, tx pgx.Tx, trip domain.Trip) error {
	if _, err := tx.Exec(ctx, `DELETE FROM trip_members WHERE trip_id = @trip_id`,
		pgx.NamedArgs{"trip_id": trip.ID}); err != nil {
		return err
	}
	if len(trip.Collaborators) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range trip.Collaborators {
		batch.Queue(`INSERT INTO trip_members (trip_id, user_id, status) VALUES ($1, $2, $3)`,
			trip.ID, c.UserID, string(c.Status))
	}
	return tx.SendBatch(ctx, batch).Close()
}

func tripArgs(trip domain.Trip, doc []byte) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                trip.ID,
		"creator_id":        trip.CreatorID,
		"title":             trip.Title,
		"start_date":        trip.StartDate,
		"end_date":          trip.EndDate,
		"status":            string(trip.Status),
		"moderation_status": string(trip.ModerationStatus),
		"doc":               doc,
		"version":           trip.Version,
		"created_at":        trip.CreatedAt,
		"updated_at":        trip.UpdatedAt,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanTrip to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a (doc, version) row into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		doc     []byte
		version int64
	)
	if err := s.Scan(&doc, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	return decodeTrip(doc, version)
}

func collectTrips(rows pgx.Rows) ([]domain.Trip, error) {
	defer rows.Close()
	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return trips, nil
}

// SQLSTATE codes mapped by mapPgError.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// mapPgError translates constraint violations into domain errors.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == pgCheckViolation && pgErr.ConstraintName == "trips_date_range":
		return dateRangeViolation
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == "users_email_key":
		return emailTaken
	}
	return err
}
