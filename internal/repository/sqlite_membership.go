package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/db"
	"github.com/alexanderramin/scopesync/internal/domain"
)

// SQLiteMembershipRepo implements MembershipRepo.
type SQLiteMembershipRepo struct {
	db db.DBTX
}

func NewSQLiteMembershipRepo(conn db.DBTX) *SQLiteMembershipRepo {
	return &SQLiteMembershipRepo{db: conn}
}

const membershipColumns = `id, course_id, user_id, full_name, email, sid, role`

func (r *SQLiteMembershipRepo) Create(ctx context.Context, m *Membership) error {
	query := `INSERT INTO memberships (` + membershipColumns + `, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.CourseID, m.UserID, m.FullName, m.Email, nullableString(m.SID), int(m.Role), nowUTC())
	if err != nil {
		return fmt.Errorf("inserting membership %s: %w", m.Email, err)
	}
	return nil
}

func (r *SQLiteMembershipRepo) GetByID(ctx context.Context, id string) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = ?`
	m, err := scanMembership(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("membership %s: %w", id, ErrNotFound)
	}
	return m, err
}

func (r *SQLiteMembershipRepo) ListByCourse(ctx context.Context, courseID string) ([]*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE course_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close()

	var out []*Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating memberships: %w", err)
	}
	return out, nil
}

func (r *SQLiteMembershipRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE memberships SET role = ? WHERE id = ?`, int(role), id)
	if err != nil {
		return fmt.Errorf("updating membership role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("membership %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteMembershipRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "memberships", "membership", id)
}

func scanMembership(s rowScanner) (*Membership, error) {
	var m Membership
	var sid sql.NullString
	var role int
	if err := s.Scan(&m.ID, &m.CourseID, &m.UserID, &m.FullName, &m.Email, &sid, &role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning membership: %w", err)
	}
	m.SID = parseNullableString(sid)
	m.Role = domain.Role(role)
	return &m, nil
}
