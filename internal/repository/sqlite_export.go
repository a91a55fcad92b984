package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/db"
)

// SQLiteExportRepo implements ExportRepo.
type SQLiteExportRepo struct {
	db db.DBTX
}

func NewSQLiteExportRepo(conn db.DBTX) *SQLiteExportRepo {
	return &SQLiteExportRepo{db: conn}
}

func (r *SQLiteExportRepo) Create(ctx context.Context, j *ExportJob) error {
	query := `INSERT INTO exports (id, assignment_id, polls, required, created_at) VALUES (?, ?, 0, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, j.ID, j.AssignmentID, j.Required, nowUTC()); err != nil {
		return fmt.Errorf("inserting export: %w", err)
	}
	return nil
}

// Poll records one status poll and returns the updated job.
func (r *SQLiteExportRepo) Poll(ctx context.Context, id string) (*ExportJob, error) {
	query := `UPDATE exports SET polls = polls + 1 WHERE id = ?
		RETURNING id, assignment_id, polls, required`
	var j ExportJob
	err := r.db.QueryRowContext(ctx, query, id).Scan(&j.ID, &j.AssignmentID, &j.Polls, &j.Required)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("polling export: %w", err)
	}
	return &j, nil
}
