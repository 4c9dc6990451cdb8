package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// pgAuditRepo is the Postgres implementation of AuditRepo.
type pgAuditRepo struct {
	db db
}

// NewAuditRepo constructs a Postgres AuditRepo.
func NewAuditRepo(conn db) AuditRepo {
	return &pgAuditRepo{db: conn}
}

// Record appends one entry to the activity log.
func (r *pgAuditRepo) Record(ctx context.Context, e domain.AuditEntry) error {
	const q = `
		INSERT INTO activity_log (id, user_id, action, details, created_at)
		VALUES (@id, @user_id, @action, @details, @created_at)`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":         e.ID,
		"user_id":    e.UserID,
		"action":     string(e.Action),
		"details":    e.Details,
		"created_at": e.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("repo.AuditRepo.Record: %w", err)
	}
	return nil
}

// Recent returns the newest entries joined with the user's email.
func (r *pgAuditRepo) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const q = `
		SELECT a.id, a.user_id, u.email, a.action, a.details, a.created_at
		FROM activity_log a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.Recent: %w", err)
	}
	defer rows.Close()

	entries := []domain.AuditEntry{}
	for rows.Next() {
		var (
			e      domain.AuditEntry
			action string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &action, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("repo.AuditRepo.Recent: scan: %w", err)
		}
		e.Action = domain.AuditAction(action)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AuditRepo.Recent: rows: %w", err)
	}
	return entries, nil
}
