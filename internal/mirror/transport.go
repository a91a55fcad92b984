package mirror

import (
	"context"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/outline"
)

// Form is a flat key/value parameter set for create, delete and update calls.
// Keys use the remote service's form field names.
type Form map[string]string

// ExtensionStudent is one entry of an assignment's extension student list.
// ID is the extension-specific user id, not the membership id.
type ExtensionStudent struct {
	ID    string
	Email string
}

// ExportStatus is the state of a remote submission export job.
type ExportStatus struct {
	Status   string
	Progress float64 // 0..1
}

// Done reports whether the export reached its terminal state.
func (s ExportStatus) Done() bool {
	return s.Status == "completed"
}

// AccountTransport lists, creates and deletes courses.
type AccountTransport interface {
	ListCourses(ctx context.Context) ([]domain.CourseRow, error)
	CreateCourse(ctx context.Context, form Form) (string, error)
	DeleteCourse(ctx context.Context, courseID string) error
}

// RosterTransport reads and writes course memberships. Create does not report
// the new membership id.
type RosterTransport interface {
	FetchRoster(ctx context.Context, courseID string) ([]domain.RosterRow, error)
	CreateMembership(ctx context.Context, courseID string, form Form) error
	DeleteMembership(ctx context.Context, courseID, membershipID string) error
	UpdateMembershipRole(ctx context.Context, courseID, membershipID string, form Form) error
}

// AssignmentTransport reads and writes a course's assignments. Create does not
// report the new assignment id.
type AssignmentTransport interface {
	FetchAssignments(ctx context.Context, courseID string) ([]domain.AssignmentRow, error)
	CreateAssignment(ctx context.Context, courseID string, form Form) error
	DeleteAssignment(ctx context.Context, courseID, assignmentID string) error
	UpdateAssignment(ctx context.Context, courseID, assignmentID string, form Form) error
}

// OutlineTransport reads an assignment outline and replaces it wholesale.
// Replacement does not report ids assigned to new questions.
type OutlineTransport interface {
	FetchOutline(ctx context.Context, courseID, assignmentID string) ([]outline.NodeDoc, error)
	ReplaceOutline(ctx context.Context, courseID, assignmentID string, patch outline.Patch) error
}

// ExtensionTransport applies per-student schedule overrides.
type ExtensionTransport interface {
	FetchExtensionStudents(ctx context.Context, courseID, assignmentID string) ([]ExtensionStudent, error)
	ApplyOverride(ctx context.Context, courseID, assignmentID string, payload extension.Payload) error
}

// ExportTransport starts submission exports and reports their progress.
type ExportTransport interface {
	StartExport(ctx context.Context, courseID, assignmentID string) (string, error)
	ExportStatus(ctx context.Context, courseID, fileID string) (ExportStatus, error)
}

// Transport is the full remote collaborator. Implementations own HTTP,
// authentication and page parsing; the mirror only exchanges plain data.
type Transport interface {
	AccountTransport
	RosterTransport
	AssignmentTransport
	OutlineTransport
	ExtensionTransport
	ExportTransport
}
