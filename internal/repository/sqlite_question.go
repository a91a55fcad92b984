package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/scopesync/internal/db"
	"github.com/alexanderramin/scopesync/internal/domain"
)

// SQLiteQuestionRepo implements QuestionRepo.
type SQLiteQuestionRepo struct {
	db db.DBTX
}

func NewSQLiteQuestionRepo(conn db.DBTX) *SQLiteQuestionRepo {
	return &SQLiteQuestionRepo{db: conn}
}

// Create inserts one node. Parents must be inserted before their children.
func (r *SQLiteQuestionRepo) Create(ctx context.Context, q *QuestionRecord) error {
	content, crop := string(q.Content), string(q.Crop)
	if content == "" {
		content = "[]"
	}
	if crop == "" {
		crop = "[]"
	}
	query := `INSERT INTO questions (id, assignment_id, parent_id, title, weight, type, content, crop, order_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		q.ID, q.AssignmentID, nullableString(q.ParentID), q.Title, q.Weight, string(q.Type), content, crop, q.OrderIndex)
	if err != nil {
		return fmt.Errorf("inserting question %q: %w", q.Title, err)
	}
	return nil
}

// ListByAssignment returns every node of the assignment ordered by sibling
// position.
func (r *SQLiteQuestionRepo) ListByAssignment(ctx context.Context, assignmentID string) ([]*QuestionRecord, error) {
	query := `SELECT id, assignment_id, parent_id, title, weight, type, content, crop, order_index
		FROM questions WHERE assignment_id = ? ORDER BY order_index, id`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("listing questions: %w", err)
	}
	defer rows.Close()

	var out []*QuestionRecord
	for rows.Next() {
		var q QuestionRecord
		var parent sql.NullString
		var qt, content, crop string
		if err := rows.Scan(&q.ID, &q.AssignmentID, &parent, &q.Title, &q.Weight, &qt, &content, &crop, &q.OrderIndex); err != nil {
			return nil, fmt.Errorf("scanning question: %w", err)
		}
		q.ParentID = parseNullableString(parent)
		q.Type = domain.QuestionType(qt)
		q.Content = []byte(content)
		q.Crop = []byte(crop)
		out = append(out, &q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating questions: %w", err)
	}
	return out, nil
}

func (r *SQLiteQuestionRepo) DeleteByAssignment(ctx context.Context, assignmentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE assignment_id = ?`, assignmentID); err != nil {
		return fmt.Errorf("deleting questions: %w", err)
	}
	return nil
}
