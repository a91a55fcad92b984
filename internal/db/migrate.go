package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate applies every schema statement. Statements are idempotent, so it is
// safe to run on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN is re-run on every open.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	// Numeric id allocator shared by every sandbox entity.
	`CREATE TABLE IF NOT EXISTS id_sequences (
		name     TEXT PRIMARY KEY,
		next_val INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS courses (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		nickname    TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		term        TEXT NOT NULL DEFAULT '',
		instructor  INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS memberships (
		id         TEXT PRIMARY KEY,
		course_id  TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		user_id    TEXT NOT NULL,
		full_name  TEXT NOT NULL,
		email      TEXT NOT NULL,
		sid        TEXT,
		role       INTEGER NOT NULL CHECK(role BETWEEN 0 AND 3),
		created_at TEXT NOT NULL,
		UNIQUE(course_id, email)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_memberships_course ON memberships(course_id)`,

	`CREATE TABLE IF NOT EXISTS assignments (
		id              TEXT PRIMARY KEY,
		course_id       TEXT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		title           TEXT NOT NULL,
		points          REAL NOT NULL DEFAULT 0,
		submissions     INTEGER NOT NULL DEFAULT 0,
		percent_graded  REAL NOT NULL DEFAULT 0,
		regrades_on     INTEGER NOT NULL DEFAULT 0,
		release_date    TEXT,
		due_date        TEXT,
		hard_due_date   TEXT,
		time_limit      REAL,
		submission_type TEXT NOT NULL DEFAULT 'image',
		template_path   TEXT NOT NULL DEFAULT '',
		published       INTEGER NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_course ON assignments(course_id)`,

	`CREATE TABLE IF NOT EXISTS questions (
		id            TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		parent_id     TEXT REFERENCES questions(id) ON DELETE CASCADE,
		title         TEXT NOT NULL,
		weight        REAL NOT NULL DEFAULT 0,
		type          TEXT NOT NULL CHECK(type IN ('FreeResponseQuestion','QuestionGroup')),
		content       TEXT NOT NULL DEFAULT '[]',
		crop          TEXT NOT NULL DEFAULT '[]',
		order_index   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_assignment ON questions(assignment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_questions_parent ON questions(parent_id)`,

	`CREATE TABLE IF NOT EXISTS overrides (
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		user_id       TEXT NOT NULL,
		settings      TEXT NOT NULL,
		updated_at    TEXT NOT NULL,
		PRIMARY KEY (assignment_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS exports (
		id            TEXT PRIMARY KEY,
		assignment_id TEXT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
		polls         INTEGER NOT NULL DEFAULT 0,
		required      INTEGER NOT NULL DEFAULT 1,
		created_at    TEXT NOT NULL
	)`,
}
