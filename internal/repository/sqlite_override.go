package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/scopesync/internal/db"
)

// SQLiteOverrideRepo implements OverrideRepo.
type SQLiteOverrideRepo struct {
	db db.DBTX
}

func NewSQLiteOverrideRepo(conn db.DBTX) *SQLiteOverrideRepo {
	return &SQLiteOverrideRepo{db: conn}
}

// Upsert replaces the student's settings document.
func (r *SQLiteOverrideRepo) Upsert(ctx context.Context, o *OverrideRecord) error {
	query := `INSERT INTO overrides (assignment_id, user_id, settings, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(assignment_id, user_id) DO UPDATE SET settings = excluded.settings, updated_at = excluded.updated_at`
	_, err := r.db.ExecContext(ctx, query, o.AssignmentID, o.UserID, string(o.Settings), nowUTC())
	if err != nil {
		return fmt.Errorf("upserting override: %w", err)
	}
	return nil
}

func (r *SQLiteOverrideRepo) Get(ctx context.Context, assignmentID, userID string) (*OverrideRecord, error) {
	query := `SELECT assignment_id, user_id, settings, updated_at FROM overrides WHERE assignment_id = ? AND user_id = ?`
	o, err := scanOverride(r.db.QueryRowContext(ctx, query, assignmentID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("override for user %s: %w", userID, ErrNotFound)
	}
	return o, err
}

func (r *SQLiteOverrideRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]*OverrideRecord, error) {
	query := `SELECT assignment_id, user_id, settings, updated_at FROM overrides WHERE assignment_id = ? ORDER BY user_id`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}
	defer rows.Close()

	var out []*OverrideRecord
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating overrides: %w", err)
	}
	return out, nil
}

func scanOverride(s rowScanner) (*OverrideRecord, error) {
	var o OverrideRecord
	var settings, updated string
	if err := s.Scan(&o.AssignmentID, &o.UserID, &settings, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning override: %w", err)
	}
	o.Settings = []byte(settings)
	if t, err := time.Parse(timeLayout, updated); err == nil {
		o.UpdatedAt = t
	}
	return &o, nil
}
