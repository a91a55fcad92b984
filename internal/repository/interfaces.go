// Package repository stores the sandbox remote service's state in SQLite.
package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
)

// CourseRecord is one sandbox course.
type CourseRecord struct {
	ID          string
	Name        string
	Nickname    string
	Description string
	Term        string
	Instructor  bool
}

// Membership is one course member. UserID is the account-level id used by
// the extension list; ID is the membership id used by roster writes.
type Membership struct {
	ID       string
	CourseID string
	UserID   string
	FullName string
	Email    string
	SID      *string
	Role     domain.Role
}

// AssignmentRecord is one sandbox assignment.
type AssignmentRecord struct {
	ID             string
	CourseID       string
	Title          string
	Points         float64
	Submissions    int
	PercentGraded  float64
	RegradesOn     bool
	ReleaseDate    *time.Time
	DueDate        *time.Time
	HardDueDate    *time.Time
	TimeLimit      *float64
	SubmissionType domain.SubmissionType
	TemplatePath   string
	Published      bool
}

// QuestionRecord is one stored outline node. Children are linked by ParentID
// and ordered by OrderIndex among siblings.
type QuestionRecord struct {
	ID           string
	AssignmentID string
	ParentID     *string
	Title        string
	Weight       float64
	Type         domain.QuestionType
	Content      json.RawMessage
	Crop         json.RawMessage
	OrderIndex   int
}

// OverrideRecord is the settings document last applied for one student.
type OverrideRecord struct {
	AssignmentID string
	UserID       string
	Settings     json.RawMessage
	UpdatedAt    time.Time
}

// ExportJob tracks a submission export that completes after Required polls.
type ExportJob struct {
	ID           string
	AssignmentID string
	Polls        int
	Required     int
}

type SequenceRepo interface {
	Next(ctx context.Context) (string, error)
}

type CourseRepo interface {
	Create(ctx context.Context, c *CourseRecord) error
	GetByID(ctx context.Context, id string) (*CourseRecord, error)
	List(ctx context.Context) ([]*CourseRecord, error)
	Delete(ctx context.Context, id string) error
}

type MembershipRepo interface {
	Create(ctx context.Context, m *Membership) error
	GetByID(ctx context.Context, id string) (*Membership, error)
	ListByCourse(ctx context.Context, courseID string) ([]*Membership, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) error
	Delete(ctx context.Context, id string) error
}

type AssignmentRepo interface {
	Create(ctx context.Context, a *AssignmentRecord) error
	GetByID(ctx context.Context, id string) (*AssignmentRecord, error)
	ListByCourse(ctx context.Context, courseID string) ([]*AssignmentRecord, error)
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

type QuestionRepo interface {
	Create(ctx context.Context, q *QuestionRecord) error
	ListByAssignment(ctx context.Context, assignmentID string) ([]*QuestionRecord, error)
	DeleteByAssignment(ctx context.Context, assignmentID string) error
}

type OverrideRepo interface {
	Upsert(ctx context.Context, o *OverrideRecord) error
	Get(ctx context.Context, assignmentID, userID string) (*OverrideRecord, error)
	ListByAssignment(ctx context.Context, assignmentID string) ([]*OverrideRecord, error)
}

type ExportRepo interface {
	Create(ctx context.Context, j *ExportJob) error
	Poll(ctx context.Context, id string) (*ExportJob, error)
}
