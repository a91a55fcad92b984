package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/repository"
	"github.com/alexanderramin/scopesync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMinimalSchema() *SeedSchema {
	return &SeedSchema{
		Courses: []CourseImport{{Name: "Intro"}},
	}
}

func TestLoadSeedSchema_Fixture(t *testing.T) {
	schema, err := LoadSeedSchema("testdata/seed.yaml")
	require.NoError(t, err)

	assert.Equal(t, "instructor@example.edu", schema.Account)
	require.Len(t, schema.Courses, 2)
	assert.True(t, schema.Courses[0].IsInstructor())
	assert.False(t, schema.Courses[1].IsInstructor())
	require.Len(t, schema.Courses[0].Assignments, 1)
	hw := schema.Courses[0].Assignments[0]
	require.NotNil(t, hw.TimeLimit)
	assert.Equal(t, 60.0, *hw.TimeLimit)
	require.Len(t, hw.Outline, 2)
	assert.Len(t, hw.Outline[0].Children, 2)

	assert.Empty(t, ValidateSeedSchema(schema))
}

func TestParseSeedSchema_RejectsUnknownKeys(t *testing.T) {
	_, err := ParseSeedSchema([]byte("courses:\n  - name: X\n    colour: red\n"))
	assert.Error(t, err)
}

func TestValidateSeedSchema_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateSeedSchema(validMinimalSchema()))
}

func TestValidateSeedSchema_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *SeedSchema)
		want   string
	}{
		{"no courses", func(s *SeedSchema) { s.Courses = nil }, "Courses"},
		{"missing course name", func(s *SeedSchema) { s.Courses[0].Name = "" }, "Courses[0].Name"},
		{"bad account", func(s *SeedSchema) { s.Account = "not-an-email" }, "Account"},
		{"bad person email", func(s *SeedSchema) {
			s.Courses[0].People = []PersonImport{{Name: "A", Email: "nope"}}
		}, "People[0].Email"},
		{"duplicate email", func(s *SeedSchema) {
			s.Courses[0].People = []PersonImport{
				{Name: "A", Email: "a@example.edu"},
				{Name: "B", Email: "A@example.edu"},
			}
		}, "duplicate email"},
		{"unknown role", func(s *SeedSchema) {
			s.Courses[0].People = []PersonImport{{Name: "A", Email: "a@example.edu", Role: "dean"}}
		}, "unknown role"},
		{"bad timestamp", func(s *SeedSchema) {
			s.Courses[0].Assignments = []AssignmentImport{{Title: "HW", Due: "tomorrow"}}
		}, "invalid timestamp"},
		{"due before release", func(s *SeedSchema) {
			s.Courses[0].Assignments = []AssignmentImport{{Title: "HW", Release: "2025-09-02T00:00:00Z", Due: "2025-09-01T00:00:00Z"}}
		}, "before release"},
		{"hard due before due", func(s *SeedSchema) {
			s.Courses[0].Assignments = []AssignmentImport{{Title: "HW", Due: "2025-09-02T00:00:00Z", HardDue: "2025-09-01T00:00:00Z"}}
		}, "before due"},
		{"bad submission type", func(s *SeedSchema) {
			s.Courses[0].Assignments = []AssignmentImport{{Title: "HW", SubmissionType: "zip"}}
		}, "SubmissionType"},
		{"untitled question", func(s *SeedSchema) {
			s.Courses[0].Assignments = []AssignmentImport{{Title: "HW", Outline: []QuestionImport{{Children: []QuestionImport{{Title: "x"}}}}}}
		}, "Outline[0].Title"},
		{"duplicate course id", func(s *SeedSchema) {
			s.Courses = []CourseImport{{ID: "1", Name: "A"}, {ID: "1", Name: "B"}}
		}, "duplicate course id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validMinimalSchema()
			tt.mutate(s)
			errs := ValidateSeedSchema(s)
			require.NotEmpty(t, errs)
			assert.Contains(t, errors.Join(errs...).Error(), tt.want)
		})
	}
}

func TestApply_Fixture(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)

	schema, err := LoadSeedSchema("testdata/seed.yaml")
	require.NoError(t, err)

	res, err := Apply(ctx, testutil.NewTestUoW(database), schema)
	require.NoError(t, err)
	require.Len(t, res.CourseIDs, 2)
	assert.Equal(t, "100", res.CourseIDs[0])
	assert.Equal(t, 3, res.PersonCount)
	assert.Equal(t, 1, res.AssignmentCount)
	assert.Equal(t, 4, res.QuestionCount)

	members, err := repository.NewSQLiteMembershipRepo(database).ListByCourse(ctx, "100")
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, domain.RoleStudent, members[0].Role)
	assert.Equal(t, domain.RoleTA, members[2].Role)
	assert.NotEqual(t, members[0].ID, members[0].UserID)

	assignments, err := repository.NewSQLiteAssignmentRepo(database).ListByCourse(ctx, "100")
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, domain.SubmissionPDF, assignments[0].SubmissionType)
	require.NotNil(t, assignments[0].DueDate)
	assert.True(t, testutil.TestDue.Equal(*assignments[0].DueDate))

	questions, err := repository.NewSQLiteQuestionRepo(database).ListByAssignment(ctx, assignments[0].ID)
	require.NoError(t, err)
	require.Len(t, questions, 4)
	var groups int
	for _, q := range questions {
		if q.Type == domain.QuestionGroup {
			groups++
			assert.Nil(t, q.ParentID)
		}
	}
	assert.Equal(t, 1, groups)
}

func TestApply_InvalidSchemaWritesNothing(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	s := validMinimalSchema()
	s.Courses[0].Name = ""

	_, err := Apply(ctx, testutil.NewTestUoW(database), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed validation failed")

	courses, err := repository.NewSQLiteCourseRepo(database).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	database := testutil.NewTestDB(t)
	boom := errors.New("disk full")

	schema, err := LoadSeedSchema("testdata/seed.yaml")
	require.NoError(t, err)

	// Exec 1 creates course 100; the failure lands among its members.
	uow := &testutil.FailOnNthExecUoW{DB: database, FailOn: 4, Err: boom}
	_, err = Apply(ctx, uow, schema)
	require.ErrorIs(t, err, boom)

	courses, err := repository.NewSQLiteCourseRepo(database).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}
