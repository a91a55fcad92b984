package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/db"
)

// SQLiteCourseRepo implements CourseRepo.
type SQLiteCourseRepo struct {
	db db.DBTX
}

func NewSQLiteCourseRepo(conn db.DBTX) *SQLiteCourseRepo {
	return &SQLiteCourseRepo{db: conn}
}

func (r *SQLiteCourseRepo) Create(ctx context.Context, c *CourseRecord) error {
	query := `INSERT INTO courses (id, name, nickname, description, term, instructor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Nickname, c.Description, c.Term, boolToInt(c.Instructor), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func (r *SQLiteCourseRepo) GetByID(ctx context.Context, id string) (*CourseRecord, error) {
	query := `SELECT id, name, nickname, description, term, instructor FROM courses WHERE id = ?`
	c, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (r *SQLiteCourseRepo) List(ctx context.Context) ([]*CourseRecord, error) {
	query := `SELECT id, name, nickname, description, term, instructor FROM courses
		ORDER BY instructor DESC, created_at, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	defer rows.Close()

	var out []*CourseRecord
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating courses: %w", err)
	}
	return out, nil
}

func (r *SQLiteCourseRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "courses", "course", id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCourse(s rowScanner) (*CourseRecord, error) {
	var c CourseRecord
	var instructor int
	if err := s.Scan(&c.ID, &c.Name, &c.Nickname, &c.Description, &c.Term, &instructor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning course: %w", err)
	}
	c.Instructor = intToBool(instructor)
	return &c, nil
}

// deleteByID removes one row and reports ErrNotFound when nothing matched.
func deleteByID(ctx context.Context, conn db.DBTX, table, kind, id string) error {
	res, err := conn.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
