package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/scopesync/internal/db"
)

const (
	sequenceName  = "entity"
	sequenceStart = 10000
)

// SQLiteSequenceRepo allocates numeric sandbox ids from the id_sequences
// table. Every entity draws from one sequence, so ids never collide across
// tables.
type SQLiteSequenceRepo struct {
	db db.DBTX
}

func NewSQLiteSequenceRepo(conn db.DBTX) *SQLiteSequenceRepo {
	return &SQLiteSequenceRepo{db: conn}
}

// Next returns the next id as a decimal string.
func (r *SQLiteSequenceRepo) Next(ctx context.Context) (string, error) {
	seed := `INSERT OR IGNORE INTO id_sequences (name, next_val) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, seed, sequenceName, sequenceStart); err != nil {
		return "", fmt.Errorf("seeding id sequence: %w", err)
	}

	var next int64
	alloc := `UPDATE id_sequences SET next_val = next_val + 1 WHERE name = ? RETURNING next_val - 1`
	if err := r.db.QueryRowContext(ctx, alloc, sequenceName).Scan(&next); err != nil {
		return "", fmt.Errorf("allocating id: %w", err)
	}
	return strconv.FormatInt(next, 10), nil
}
