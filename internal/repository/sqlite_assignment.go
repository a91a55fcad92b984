package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/db"
	"github.com/alexanderramin/scopesync/internal/domain"
)

// SQLiteAssignmentRepo implements AssignmentRepo.
type SQLiteAssignmentRepo struct {
	db db.DBTX
}

func NewSQLiteAssignmentRepo(conn db.DBTX) *SQLiteAssignmentRepo {
	return &SQLiteAssignmentRepo{db: conn}
}

const assignmentColumns = `id, course_id, title, points, submissions, percent_graded, regrades_on,
	release_date, due_date, hard_due_date, time_limit, submission_type, template_path, published`

func (r *SQLiteAssignmentRepo) Create(ctx context.Context, a *AssignmentRecord) error {
	st := a.SubmissionType
	if st == "" {
		st = domain.SubmissionImage
	}
	query := `INSERT INTO assignments (` + assignmentColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.ID,
		a.CourseID,
		a.Title,
		a.Points,
		a.Submissions,
		a.PercentGraded,
		boolToInt(a.RegradesOn),
		nullableTimeToString(a.ReleaseDate),
		nullableTimeToString(a.DueDate),
		nullableTimeToString(a.HardDueDate),
		nullableFloat(a.TimeLimit),
		string(st),
		a.TemplatePath,
		boolToInt(a.Published),
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting assignment %q: %w", a.Title, err)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) GetByID(ctx context.Context, id string) (*AssignmentRecord, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = ?`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment %s: %w", id, ErrNotFound)
	}
	return a, err
}

func (r *SQLiteAssignmentRepo) ListByCourse(ctx context.Context, courseID string) ([]*AssignmentRecord, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE course_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var out []*AssignmentRecord
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}
	return out, nil
}

func (r *SQLiteAssignmentRepo) SetPublished(ctx context.Context, id string, published bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE assignments SET published = ? WHERE id = ?`, boolToInt(published), id)
	if err != nil {
		return fmt.Errorf("updating assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assignment %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteAssignmentRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "assignments", "assignment", id)
}

func scanAssignment(s rowScanner) (*AssignmentRecord, error) {
	var a AssignmentRecord
	var regrades, published int
	var release, due, hardDue sql.NullString
	var limit sql.NullFloat64
	var st string
	err := s.Scan(
		&a.ID, &a.CourseID, &a.Title, &a.Points, &a.Submissions, &a.PercentGraded, &regrades,
		&release, &due, &hardDue, &limit, &st, &a.TemplatePath, &published,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning assignment: %w", err)
	}
	a.RegradesOn = intToBool(regrades)
	a.Published = intToBool(published)
	a.ReleaseDate = parseNullableTime(release)
	a.DueDate = parseNullableTime(due)
	a.HardDueDate = parseNullableTime(hardDue)
	a.TimeLimit = parseNullableFloat(limit)
	a.SubmissionType = domain.SubmissionType(st)
	return &a, nil
}
