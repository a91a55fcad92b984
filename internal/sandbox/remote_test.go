package sandbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/alexanderramin/scopesync/internal/repository"
	"github.com/alexanderramin/scopesync/internal/roster"
	"github.com/alexanderramin/scopesync/internal/sandbox"
	"github.com/alexanderramin/scopesync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T, opts ...sandbox.Option) *sandbox.Remote {
	t.Helper()
	return sandbox.New(testutil.NewTestDB(t), opts...)
}

// seedCourse creates an instructor course with one assignment and two
// members through the transport itself.
func seedCourse(t *testing.T, r *sandbox.Remote) (courseID, assignmentID string) {
	t.Helper()
	ctx := context.Background()

	courseID, err := r.CreateCourse(ctx, mirror.Form{
		"course[name]": "Intro to Testing", "course[shortname]": "CS 1",
		"course[term]": "Fall", "course[year]": "2025",
	})
	require.NoError(t, err)

	for _, f := range []mirror.Form{
		{"user[name]": "Ada Lovelace", "user[email]": "ada@example.edu", "user[sid]": "a1", "course_membership[role]": "0"},
		{"user[name]": "Grace Hopper", "user[email]": "grace@example.edu", "course_membership[role]": "2"},
	} {
		require.NoError(t, r.CreateMembership(ctx, courseID, f))
	}

	require.NoError(t, r.CreateAssignment(ctx, courseID, mirror.Form{
		"assignment[title]":               "Homework 1",
		"assignment[release_date_string]": testutil.TestRelease.Format(time.RFC3339),
		"assignment[due_date_string]":     testutil.TestDue.Format(time.RFC3339),
		"assignment[submission_type]":     "pdf",
	}))
	rows, err := r.FetchAssignments(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return courseID, rows[0].ID
}

func TestRemote_CreateCourseReturnsID(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)

	id, err := r.CreateCourse(ctx, mirror.Form{"course[name]": "Compilers", "course[term]": "Spring", "course[year]": "2026"})
	require.NoError(t, err)
	assert.Equal(t, "10000", id)

	rows, err := r.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Spring 2026", rows[0].Term)
	assert.True(t, rows[0].Instructor)

	_, err = r.CreateCourse(ctx, mirror.Form{})
	assert.ErrorIs(t, err, sandbox.ErrBadRequest)
}

func TestRemote_RosterWrites(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)
	courseID, _ := seedCourse(t, r)

	rows, err := r.FetchRoster(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].SID)
	assert.Equal(t, "a1", *rows[0].SID)
	assert.Nil(t, rows[1].SID)

	require.NoError(t, r.UpdateMembershipRole(ctx, courseID, rows[1].DataID, mirror.Form{"course_membership[role]": "3"}))
	err = r.UpdateMembershipRole(ctx, courseID, rows[1].DataID, mirror.Form{"course_membership[role]": "7"})
	assert.ErrorIs(t, err, sandbox.ErrBadRequest)

	require.NoError(t, r.DeleteMembership(ctx, courseID, rows[0].DataID))
	rows, err = r.FetchRoster(ctx, courseID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int(domain.RoleReader), rows[0].RoleCode)

	err = r.DeleteMembership(ctx, "999", rows[0].DataID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemote_DuplicateMembershipRejected(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)
	courseID, _ := seedCourse(t, r)

	err := r.CreateMembership(ctx, courseID, mirror.Form{"user[name]": "Ada Again", "user[email]": "ada@example.edu", "course_membership[role]": "0"})
	assert.Error(t, err)
}

func TestRemote_ReplaceOutlineAssignsIDsAndTypes(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)
	courseID, assignmentID := seedCourse(t, r)

	patch := outline.Patch{QuestionData: []outline.NodeDoc{
		{Title: "Part A", Weight: 4, Children: []outline.NodeDoc{
			{Title: "A.1", Weight: 2, Crop: outline.DefaultCrop()},
			{Title: "A.2", Weight: 2},
		}},
		{Title: "Part B", Weight: 1},
	}}
	require.NoError(t, r.ReplaceOutline(ctx, courseID, assignmentID, patch))

	docs, err := r.FetchOutline(ctx, courseID, assignmentID)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Part A", docs[0].Title)
	assert.Equal(t, string(domain.QuestionGroup), docs[0].Type)
	require.NotNil(t, docs[0].ID)
	require.Len(t, docs[0].Children, 2)
	assert.Equal(t, "A.1", docs[0].Children[0].Title)
	assert.Equal(t, *docs[0].ID, *docs[0].Children[0].ParentID)
	assert.Equal(t, string(domain.QuestionFreeResponse), docs[0].Children[0].Type)
	assert.Equal(t, outline.DefaultCrop(), docs[0].Children[0].Crop)
	assert.Equal(t, "Part B", docs[1].Title)

	// Resending with ids keeps them; omitted nodes are deleted.
	keep := docs[1]
	require.NoError(t, r.ReplaceOutline(ctx, courseID, assignmentID, outline.Patch{QuestionData: []outline.NodeDoc{keep}}))
	docs, err = r.FetchOutline(ctx, courseID, assignmentID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, *keep.ID, *docs[0].ID)
}

func TestRemote_ReplaceOutlineRollsBack(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	r := sandbox.New(database)
	courseID, assignmentID := seedCourse(t, r)

	require.NoError(t, r.ReplaceOutline(ctx, courseID, assignmentID, outline.Patch{QuestionData: []outline.NodeDoc{
		{Title: "Original"},
	}}))

	boom := errors.New("disk full")
	// Exec 1 deletes the old outline; exec 2 seeds the id sequence; exec 3
	// inserts the first new node.
	failing := sandbox.New(database, sandbox.WithUnitOfWork(&testutil.FailOnNthExecUoW{DB: database, FailOn: 3, Err: boom}))
	err := failing.ReplaceOutline(ctx, courseID, assignmentID, outline.Patch{QuestionData: []outline.NodeDoc{
		{Title: "Replacement"},
	}})
	assert.ErrorIs(t, err, boom)

	docs, err := r.FetchOutline(ctx, courseID, assignmentID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Original", docs[0].Title)
}

func TestRemote_ReplaceOutlineRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)
	courseID, assignmentID := seedCourse(t, r)
	id := "42"

	err := r.ReplaceOutline(ctx, courseID, assignmentID, outline.Patch{QuestionData: []outline.NodeDoc{
		{ID: &id, Title: "One"}, {ID: &id, Title: "Two"},
	}})
	assert.ErrorIs(t, err, sandbox.ErrBadRequest)
}

func TestRemote_ExtensionsUseStudentUserIDs(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)
	courseID, assignmentID := seedCourse(t, r)

	students, err := r.FetchExtensionStudents(ctx, courseID, assignmentID)
	require.NoError(t, err)
	require.Len(t, students, 1, "only students are listed")
	assert.Equal(t, "ada@example.edu", students[0].Email)

	due := testutil.TestDue.Add(48 * time.Hour)
	ov, err := extension.Parse(map[string]any{"due_date": due})
	require.NoError(t, err)
	base := extension.Schedule{ReleaseDate: &testutil.TestRelease, DueDate: &testutil.TestDue}
	require.NoError(t, r.ApplyOverride(ctx, courseID, assignmentID, extension.NewPayload(base, ov, students[0].ID)))

	got, err := r.Override(ctx, assignmentID, students[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Visible)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "2025-09-10T23:59", got.DueDate.Value)

	require.NoError(t, r.ApplyOverride(ctx, courseID, assignmentID, extension.NewPayload(base, extension.Override{}, students[0].ID)))
	got, err = r.Override(ctx, assignmentID, students[0].ID)
	require.NoError(t, err)
	assert.True(t, got.Diff.Empty())
}

func TestRemote_ExportCompletesAfterPolls(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t, sandbox.WithExportPolls(3))
	courseID, assignmentID := seedCourse(t, r)

	fileID, err := r.StartExport(ctx, courseID, assignmentID)
	require.NoError(t, err)

	var last mirror.ExportStatus
	for i := 0; i < 3; i++ {
		last, err = r.ExportStatus(ctx, courseID, fileID)
		require.NoError(t, err)
		if i < 2 {
			assert.False(t, last.Done())
		}
	}
	assert.True(t, last.Done())

	_, err = r.ExportStatus(ctx, courseID, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRemote_PublishAndDelete(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	r := sandbox.New(database)
	courseID, assignmentID := seedCourse(t, r)

	require.NoError(t, r.UpdateAssignment(ctx, courseID, assignmentID, mirror.Form{"assignment[published]": "true"}))
	rec, err := repository.NewSQLiteAssignmentRepo(database).GetByID(ctx, assignmentID)
	require.NoError(t, err)
	assert.True(t, rec.Published)
	assert.Equal(t, domain.SubmissionPDF, rec.SubmissionType)

	require.NoError(t, r.DeleteAssignment(ctx, courseID, assignmentID))
	_, err = r.FetchOutline(ctx, courseID, assignmentID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, r.DeleteCourse(ctx, courseID))
	_, err = r.FetchRoster(ctx, courseID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// The mirror layer runs unchanged against the sandbox.
func TestRemote_MirrorEndToEnd(t *testing.T) {
	ctx := context.Background()
	r := newRemote(t)
	courseID, _ := seedCourse(t, r)

	acct := mirror.NewAccount(mirror.NewSession(testutil.TestEmail, r))
	require.NoError(t, acct.Load(ctx))
	c, err := acct.Course(courseID)
	require.NoError(t, err)

	require.NoError(t, c.AddPerson(ctx, mirror.NewPerson{Name: "Alan Turing", Email: "alan@example.edu", Role: domain.RoleStudent}))
	people, err := c.People(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 3)

	a, err := c.Assignment(ctx, roster.ByName[*mirror.Assignment]("Homework 1"))
	require.NoError(t, err)
	_, err = a.AddQuestion(ctx, outline.NewQuestion{Title: "Q1", Weight: 5})
	require.NoError(t, err)
	q, err := a.Question(ctx, roster.ByName[*outline.Question]("Q1"))
	require.NoError(t, err)
	require.NotNil(t, q.ID)

	ov, err := extension.Parse(map[string]any{"due_delta": 24 * time.Hour})
	require.NoError(t, err)
	diff, err := a.ApplyExtension(ctx, "alan@example.edu", ov)
	require.NoError(t, err)
	require.NotNil(t, diff.DueDate)
	assert.Equal(t, "2025-09-09T23:59", diff.DueDate.Value)

	fileID, err := a.ExportSubmissions(ctx, mirror.ExportOptions{Interval: time.Millisecond})
	require.NoError(t, err)
	assert.NotEmpty(t, fileID)
}
