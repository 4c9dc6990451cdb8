package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// OpenSQLite opens a SQLite database at path with foreign keys enabled.
// ":memory:" opens a private in-memory database on a single connection.
// Migrations are not applied; see migrations.NewProvider.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("repo.OpenSQLite: create directory: %w", err)
		}
		dsn += "&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	if path == ":memory:" {
		// Every new connection would see a fresh empty database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return conn, nil
}

// sqlDB is satisfied by *sql.DB. Writes that touch more than one table open
// their own transaction, so a bare *sql.Tx is not accepted.
type sqlDB interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteRepos returns every repository backed by a SQLite database.
func NewSQLiteRepos(conn sqlDB) Repos {
	return Repos{
		Trips: &sqliteTripRepo{db: conn},
		Users: &sqliteUserRepo{db: conn},
		Audit: &sqliteAuditRepo{db: conn},
	}
}

// ---- trips ------------------------------------------------------------------

type sqliteTripRepo struct {
	db sqlDB
}

func (r *sqliteTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip.Version = 1
	doc, err := encodeTrip(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	const q = `
		INSERT INTO trips (id, creator_id, title, start_date, end_date, status,
		                   moderation_status, doc, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, q,
			trip.ID.String(), trip.CreatorID.String(), trip.Title,
			domain.DayKey(trip.StartDate), domain.DayKey(trip.EndDate),
			string(trip.Status), string(trip.ModerationStatus), string(doc), trip.Version,
			formatTime(trip.CreatedAt), formatTime(trip.UpdatedAt),
		); err != nil {
			return err
		}
		return syncSQLiteMembers(ctx, tx, trip)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", mapSQLiteError(err))
	}
	return trip, nil
}

func (r *sqliteTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	row := r.db.QueryRowContext(ctx, `SELECT doc, version FROM trips WHERE id = ?`, id.String())
	trip, err := scanSQLiteTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

func (r *sqliteTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	expected := trip.Version
	trip.Version = expected + 1
	doc, err := encodeTrip(trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	const q = `
		UPDATE trips
		SET title = ?, start_date = ?, end_date = ?, status = ?, moderation_status = ?,
		    doc = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?`

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			trip.Title, domain.DayKey(trip.StartDate), domain.DayKey(trip.EndDate),
			string(trip.Status), string(trip.ModerationStatus), string(doc), trip.Version,
			formatTime(trip.UpdatedAt), trip.ID.String(), expected,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id = ?)`,
				trip.ID.String()).Scan(&exists); err != nil {
				return err
			}
			if exists {
				return domain.ErrConflict
			}
			return domain.ErrNotFound
		}
		return syncSQLiteMembers(ctx, tx, trip)
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", mapSQLiteError(err))
	}
	return trip, nil
}

func (r *sqliteTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *sqliteTripRepo) ListForUser(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const where = `
		WHERE t.creator_id = ?1
		   OR EXISTS (SELECT 1 FROM trip_members m
		              WHERE m.trip_id = t.id AND m.user_id = ?1 AND m.status = 'accepted')`

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM trips t`+where, userID.String()).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForUser: count: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT t.doc, t.version FROM trips t`+where+`
		ORDER BY t.start_date ASC, t.created_at ASC
		LIMIT ?2 OFFSET ?3`, userID.String(), p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForUser: %w", err)
	}
	trips, err := collectSQLiteTrips(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForUser: %w", err)
	}
	return trips, total, nil
}

func (r *sqliteTripRepo) ListInvitations(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const q = `
		SELECT t.doc, t.version
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		WHERE m.user_id = ? AND m.status = 'pending'
		ORDER BY t.start_date ASC`

	rows, err := r.db.QueryContext(ctx, q, userID.String())
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListInvitations: %w", err)
	}
	trips, err := collectSQLiteTrips(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListInvitations: %w", err)
	}
	return trips, nil
}

func (r *sqliteTripRepo) ListAll(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAll: count: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT doc, version FROM trips
		ORDER BY start_date DESC, created_at DESC
		LIMIT ? OFFSET ?`, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}
	trips, err := collectSQLiteTrips(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListAll: %w", err)
	}
	return trips, total, nil
}

func (r *sqliteTripRepo) CountByStatus(ctx context.Context, status domain.LifecycleStatus) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM trips WHERE ?1 = '' OR status = ?1`, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("repo.TripRepo.CountByStatus: %w", err)
	}
	return n, nil
}

// CountByMonth relies on created_at being stored as RFC 3339 UTC text.
func (r *sqliteTripRepo) CountByMonth(ctx context.Context) ([]domain.MonthlyCount, error) {
	const q = `
		SELECT substr(created_at, 1, 7) AS month, count(*)
		FROM trips
		GROUP BY month
		ORDER BY month ASC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CountByMonth: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyCount
	for rows.Next() {
		var (
			month string
			n     int
		)
		if err := rows.Scan(&month, &n); err != nil {
			return nil, fmt.Errorf("repo.TripRepo.CountByMonth: scan: %w", err)
		}
		ym, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.CountByMonth: parse %q: %w", month, err)
		}
		out = append(out, monthLabel(ym.Year(), ym.Month(), n))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.CountByMonth: rows: %w", err)
	}
	return out, nil
}

func (r *sqliteTripRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func syncSQLiteMembers(ctx context.Context, tx *sql.Tx, trip domain.Trip) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM trip_members WHERE trip_id = ?`, trip.ID.String()); err != nil {
		return err
	}
	for _, c := range trip.Collaborators {
		if _, err := tx.ExecContext(ctx, `INSERT INTO trip_members (trip_id, user_id, status) VALUES (?, ?, ?)`,
			trip.ID.String(), c.UserID.String(), string(c.Status)); err != nil {
			return err
		}
	}
	return nil
}

func scanSQLiteTrip(s scanner) (domain.Trip, error) {
	var (
		doc     string
		version int64
	)
	if err := s.Scan(&doc, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}
	return decodeTrip([]byte(doc), version)
}

func collectSQLiteTrips(rows *sql.Rows) ([]domain.Trip, error) {
	defer rows.Close()
	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanSQLiteTrip(rows)
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

// ---- users ------------------------------------------------------------------

type sqliteUserRepo struct {
	db sqlDB
}

func (r *sqliteUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users (id, email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		u.ID.String(), u.Email, u.Name, u.PasswordHash, string(u.Role), formatTime(u.CreatedAt))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", mapSQLiteError(err))
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r *sqliteUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id.String())
	u, err := scanSQLiteUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *sqliteUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanSQLiteUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return u, nil
}

func (r *sqliteUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id.String()
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE id IN (?` + strings.Repeat(", ?", len(ids)-1) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.GetByIDs: %w", err)
	}
	users, err := collectSQLiteUsers(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.GetByIDs: %w", err)
	}
	return users, nil
}

func (r *sqliteUserRepo) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, formatTime(at), id.String())
	if err != nil {
		return fmt.Errorf("repo.UserRepo.TouchLogin: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("repo.UserRepo.TouchLogin: %w", err)
	} else if n == 0 {
		return fmt.Errorf("repo.UserRepo.TouchLogin: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *sqliteUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, role = ?, password_hash = ? WHERE id = ?`,
		u.Name, string(u.Role), u.PasswordHash, u.ID.String())
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	} else if n == 0 {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", domain.ErrNotFound)
	}
	updated, err := r.GetByID(ctx, u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	return updated, nil
}

// Delete relies on ON DELETE CASCADE, which needs foreign_keys enabled (see OpenSQLite).
func (r *sqliteUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("repo.UserRepo.Delete: %w", err)
	} else if n == 0 {
		return fmt.Errorf("repo.UserRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *sqliteUserRepo) List(ctx context.Context, p domain.PaginationParams) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.List: count: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?`, p.Limit, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	users, err := collectSQLiteUsers(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	return users, total, nil
}

func scanSQLiteUser(s scanner) (domain.User, error) {
	var (
		u                   domain.User
		id, role, createdAt string
		lastLogin           sql.NullString
	)
	err := s.Scan(&id, &u.Email, &u.Name, &u.PasswordHash, &role, &createdAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	if u.ID, err = uuid.Parse(id); err != nil {
		return domain.User{}, fmt.Errorf("parse id: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.User{}, err
	}
	if lastLogin.Valid {
		at, err := parseTime(lastLogin.String)
		if err != nil {
			return domain.User{}, err
		}
		u.LastLoginAt = &at
	}
	u.Role = domain.UserRole(role)
	return u, nil
}

func collectSQLiteUsers(rows *sql.Rows) ([]domain.User, error) {
	defer rows.Close()
	users := []domain.User{}
	for rows.Next() {
		u, err := scanSQLiteUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return users, nil
}

// ---- activity log -----------------------------------------------------------

type sqliteAuditRepo struct {
	db sqlDB
}

func (r *sqliteAuditRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_log (id, user_id, action, details, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID.String(), string(e.Action), e.Details, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("repo.AuditRepo.Record: %w", err)
	}
	return nil
}

func (r *sqliteAuditRepo) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const q = `
		SELECT a.id, a.user_id, u.email, a.action, a.details, a.created_at
		FROM activity_log a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.Recent: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e                      domain.AuditEntry
			id, userID, action, at string
		)
		if err := rows.Scan(&id, &userID, &e.UserEmail, &action, &e.Details, &at); err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.Recent: scan: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.Recent: %w", err)
		}
		if e.UserID, err = uuid.Parse(userID); err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.Recent: %w", err)
		}
		if e.CreatedAt, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.Recent: %w", err)
		}
		e.Action = domain.AuditAction(action)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.Recent: rows: %w", err)
	}
	return entries, nil
}

// ---- helpers ----------------------------------------------------------------

// sqliteTimeLayout sorts lexically in time order, which ORDER BY relies on.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// mapSQLiteError translates constraint violations into domain errors.
func mapSQLiteError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	msg := sqliteErr.Error()
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		if strings.Contains(msg, "trips_date_range") {
			return dateRangeViolation
		}
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		if strings.Contains(msg, "users.email") {
			return emailTaken
		}
	}
	return err
}
