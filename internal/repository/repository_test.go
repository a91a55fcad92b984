package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCourse(t *testing.T, repo *SQLiteCourseRepo, id string, instructor bool) {
	t.Helper()
	require.NoError(t, repo.Create(context.Background(), &CourseRecord{ID: id, Name: "Course " + id, Term: "Fall 2025", Instructor: instructor}))
}

func TestSequenceRepo_AllocatesIncreasingIDs(t *testing.T) {
	repo := NewSQLiteSequenceRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	first, err := repo.Next(ctx)
	require.NoError(t, err)
	second, err := repo.Next(ctx)
	require.NoError(t, err)

	assert.Equal(t, "10000", first)
	assert.Equal(t, "10001", second)
}

func TestCourseRepo_ListInstructorFirst(t *testing.T) {
	repo := NewSQLiteCourseRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	seedCourse(t, repo, "2", false)
	seedCourse(t, repo, "1", true)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1", list[0].ID)
	assert.True(t, list[0].Instructor)

	require.NoError(t, repo.Delete(ctx, "1"))
	_, err = repo.GetByID(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "1"), ErrNotFound)
}

func TestMembershipRepo_CRUD(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seedCourse(t, NewSQLiteCourseRepo(database), "1", true)
	repo := NewSQLiteMembershipRepo(database)

	sid := "s-1"
	require.NoError(t, repo.Create(ctx, &Membership{ID: "10", CourseID: "1", UserID: "90", FullName: "Ada", Email: "ada@example.edu", SID: &sid}))
	require.NoError(t, repo.Create(ctx, &Membership{ID: "11", CourseID: "1", UserID: "91", FullName: "Bob", Email: "bob@example.edu", Role: domain.RoleTA}))

	err := repo.Create(ctx, &Membership{ID: "12", CourseID: "1", UserID: "92", FullName: "Ada 2", Email: "ada@example.edu"})
	assert.Error(t, err, "email is unique per course")

	list, err := repo.ListByCourse(ctx, "1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[0].SID)
	assert.Equal(t, "s-1", *list[0].SID)
	assert.Nil(t, list[1].SID)

	require.NoError(t, repo.UpdateRole(ctx, "10", domain.RoleReader))
	m, err := repo.GetByID(ctx, "10")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReader, m.Role)

	assert.ErrorIs(t, repo.UpdateRole(ctx, "99", domain.RoleTA), ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "11"))
	list, err = repo.ListByCourse(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssignmentRepo_RoundTripsNullableFields(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seedCourse(t, NewSQLiteCourseRepo(database), "1", true)
	repo := NewSQLiteAssignmentRepo(database)

	release := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	due := release.Add(7 * 24 * time.Hour)
	limit := 90.0
	require.NoError(t, repo.Create(ctx, &AssignmentRecord{ID: "20", CourseID: "1", Title: "HW1", Points: 10, ReleaseDate: &release, DueDate: &due, TimeLimit: &limit}))
	require.NoError(t, repo.Create(ctx, &AssignmentRecord{ID: "21", CourseID: "1", Title: "HW2", SubmissionType: domain.SubmissionPDF}))

	a, err := repo.GetByID(ctx, "20")
	require.NoError(t, err)
	require.NotNil(t, a.DueDate)
	assert.True(t, due.Equal(*a.DueDate))
	assert.Nil(t, a.HardDueDate)
	require.NotNil(t, a.TimeLimit)
	assert.Equal(t, 90.0, *a.TimeLimit)
	assert.Equal(t, domain.SubmissionImage, a.SubmissionType)

	require.NoError(t, repo.SetPublished(ctx, "21", true))
	b, err := repo.GetByID(ctx, "21")
	require.NoError(t, err)
	assert.True(t, b.Published)
	assert.Nil(t, b.ReleaseDate)
	assert.Nil(t, b.TimeLimit)

	list, err := repo.ListByCourse(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestQuestionRepo_ReplaceAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seedCourse(t, NewSQLiteCourseRepo(database), "1", true)
	require.NoError(t, NewSQLiteAssignmentRepo(database).Create(ctx, &AssignmentRecord{ID: "20", CourseID: "1", Title: "HW1"}))
	repo := NewSQLiteQuestionRepo(database)

	group := "30"
	require.NoError(t, repo.Create(ctx, &QuestionRecord{ID: "30", AssignmentID: "20", Title: "Q1", Type: domain.QuestionGroup}))
	require.NoError(t, repo.Create(ctx, &QuestionRecord{ID: "31", AssignmentID: "20", ParentID: &group, Title: "Q1.a", Type: domain.QuestionFreeResponse, Content: json.RawMessage(`[{"type":"text"}]`)}))

	list, err := repo.ListByAssignment(ctx, "20")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.JSONEq(t, `[]`, string(list[0].Crop))
	assert.JSONEq(t, `[{"type":"text"}]`, string(list[1].Content))

	require.NoError(t, repo.DeleteByAssignment(ctx, "20"))
	list, err = repo.ListByAssignment(ctx, "20")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestOverrideRepo_UpsertReplaces(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seedCourse(t, NewSQLiteCourseRepo(database), "1", true)
	require.NoError(t, NewSQLiteAssignmentRepo(database).Create(ctx, &AssignmentRecord{ID: "20", CourseID: "1", Title: "HW1"}))
	repo := NewSQLiteOverrideRepo(database)

	require.NoError(t, repo.Upsert(ctx, &OverrideRecord{AssignmentID: "20", UserID: "90", Settings: json.RawMessage(`{"visible":true,"time_limit_minutes":90}`)}))
	require.NoError(t, repo.Upsert(ctx, &OverrideRecord{AssignmentID: "20", UserID: "90", Settings: json.RawMessage(`{"visible":true}`)}))

	o, err := repo.Get(ctx, "20", "90")
	require.NoError(t, err)
	assert.JSONEq(t, `{"visible":true}`, string(o.Settings))

	list, err := repo.ListByAssignment(ctx, "20")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.Get(ctx, "20", "91")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportRepo_PollCounts(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	seedCourse(t, NewSQLiteCourseRepo(database), "1", true)
	require.NoError(t, NewSQLiteAssignmentRepo(database).Create(ctx, &AssignmentRecord{ID: "20", CourseID: "1", Title: "HW1"}))
	repo := NewSQLiteExportRepo(database)

	require.NoError(t, repo.Create(ctx, &ExportJob{ID: "40", AssignmentID: "20", Required: 2}))
	j, err := repo.Poll(ctx, "40")
	require.NoError(t, err)
	assert.Equal(t, 1, j.Polls)
	j, err = repo.Poll(ctx, "40")
	require.NoError(t, err)
	assert.Equal(t, 2, j.Polls)
	assert.Equal(t, 2, j.Required)

	_, err = repo.Poll(ctx, "41")
	assert.ErrorIs(t, err, ErrNotFound)
}
