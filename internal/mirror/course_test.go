package mirror_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/roster"
	"github.com/alexanderramin/scopesync/internal/testutil"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCourse(t *testing.T) (*mirror.Course, *testutil.FakeTransport) {
	t.Helper()
	ft := testutil.NewSeededTransport()
	sess := mirror.NewSession(testutil.TestEmail, ft)
	acct := mirror.NewAccount(sess)
	require.NoError(t, acct.Load(context.Background()))
	c, err := acct.Course(testutil.TestCourseID)
	require.NoError(t, err)
	return c, ft
}

func TestCourse_RemovePersonDoesNotReload(t *testing.T) {
	ctx := context.Background()
	c, ft := setupCourse(t)

	people, err := c.People(ctx)
	require.NoError(t, err)
	require.Len(t, people, 3)
	assert.Equal(t, 1, ft.Calls("fetch_roster"))

	removed, err := c.RemovePerson(ctx, roster.ByID[*domain.Person]("ada@example.edu"))
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", removed.FullName)

	people, err = c.People(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 2)
	assert.Equal(t, 1, ft.Calls("fetch_roster"), "removal is applied locally")
	assert.True(t, c.Valid(mirror.DomainRoster))
}

func TestCourse_AddPersonReloadsExactlyOnce(t *testing.T) {
	ctx := context.Background()
	c, ft := setupCourse(t)

	_, err := c.People(ctx)
	require.NoError(t, err)

	err = c.AddPerson(ctx, mirror.NewPerson{Name: "Grace Hopper", Email: "grace@example.edu", SID: "g1", Role: domain.RoleTA, Notify: true})
	require.NoError(t, err)
	assert.False(t, c.Valid(mirror.DomainRoster))
	assert.Equal(t, 1, ft.Calls("fetch_roster"))

	people, err := c.People(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 4)
	assert.Equal(t, 2, ft.Calls("fetch_roster"))

	_, err = c.People(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ft.Calls("fetch_roster"))

	grace, err := c.Person(ctx, roster.ByID[*domain.Person]("grace@example.edu"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTA, grace.Role)
	assert.Equal(t, "g1", grace.SID)

	form := ft.Forms["create_membership"][0]
	assert.Equal(t, "2", form["course_membership[role]"])
	assert.Equal(t, "1", form["notify_by_email"])
}

func TestCourse_RosterReloadMetricFollowsInvalidation(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCourse(t)
	rosterReloads := mirror.ReloadsTotal.WithLabelValues(string(mirror.DomainRoster))

	_, err := c.People(ctx)
	require.NoError(t, err)
	before := promtestutil.ToFloat64(rosterReloads)

	_, err = c.RemovePerson(ctx, roster.ByID[*domain.Person]("ada@example.edu"))
	require.NoError(t, err)
	_, err = c.People(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, promtestutil.ToFloat64(rosterReloads), "removal is applied locally")

	err = c.AddPerson(ctx, mirror.NewPerson{Name: "Grace Hopper", Email: "grace@example.edu", Role: domain.RoleTA})
	require.NoError(t, err)
	_, err = c.People(ctx)
	require.NoError(t, err)
	_, err = c.People(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, promtestutil.ToFloat64(rosterReloads))
}

func TestCourse_AddPersonRejectsUnknownRole(t *testing.T) {
	c, ft := setupCourse(t)
	err := c.AddPerson(context.Background(), mirror.NewPerson{Name: "X", Email: "x@example.edu", Role: domain.Role(9)})
	require.Error(t, err)
	assert.Zero(t, ft.Calls("create_membership"))
}

func TestCourse_PersonByAmbiguousName(t *testing.T) {
	ctx := context.Background()
	c, _ := setupCourse(t)

	_, err := c.Person(ctx, roster.ByName[*domain.Person]("Sam Lee"))
	assert.ErrorIs(t, err, roster.ErrAmbiguous)

	p, err := c.Person(ctx, roster.ByID[*domain.Person]("slee2@example.edu"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTA, p.Role)

	p, err = c.Person(ctx, roster.ByName[*domain.Person]("Ada Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.edu", p.Email)
}

func TestCourse_ChangeRoleInPlace(t *testing.T) {
	ctx := context.Background()
	c, ft := setupCourse(t)

	p, err := c.ChangeRole(ctx, roster.ByID[*domain.Person]("ada@example.edu"), domain.RoleReader)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleReader, p.Role)
	assert.True(t, c.Valid(mirror.DomainRoster))
	assert.Equal(t, 1, ft.Calls("fetch_roster"))
	assert.Equal(t, int(domain.RoleReader), ft.Roster[testutil.TestCourseID][0].RoleCode)
}

func TestCourse_FailedWriteInvalidatesRoster(t *testing.T) {
	ctx := context.Background()
	c, ft := setupCourse(t)
	_, err := c.People(ctx)
	require.NoError(t, err)

	ft.Fail["delete_membership"] = nil
	_, err = c.RemovePerson(ctx, roster.ByID[*domain.Person]("ada@example.edu"))
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.False(t, c.Valid(mirror.DomainRoster))

	delete(ft.Fail, "delete_membership")
	people, err := c.People(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 3)
	assert.Equal(t, 2, ft.Calls("fetch_roster"))
}

func TestCourse_FailedReloadStaysInvalid(t *testing.T) {
	ctx := context.Background()
	c, ft := setupCourse(t)

	ft.Fail["fetch_roster"] = nil
	_, err := c.People(ctx)
	require.Error(t, err)
	assert.False(t, c.Valid(mirror.DomainRoster))

	delete(ft.Fail, "fetch_roster")
	_, err = c.People(ctx)
	require.NoError(t, err)
	assert.True(t, c.Valid(mirror.DomainRoster))
}

func TestCourse_AssignmentLifecycle(t *testing.T) {
	ctx := context.Background()
	c, ft := setupCourse(t)

	as, err := c.Assignments(ctx)
	require.NoError(t, err)
	require.Len(t, as, 1)

	err = c.AddAssignment(ctx, mirror.NewAssignment{
		Title:              "Homework 2",
		ReleaseDate:        testutil.TestRelease,
		DueDate:            testutil.TestDue,
		TemplatePath:       "hw2.pdf",
		SubmissionType:     domain.SubmissionPDF,
		StudentSubmissions: true,
	})
	require.NoError(t, err)
	assert.False(t, c.Valid(mirror.DomainAssignments))

	hw2, err := c.Assignment(ctx, roster.ByName[*mirror.Assignment]("Homework 2"))
	require.NoError(t, err)
	assert.NotEmpty(t, hw2.ID())
	assert.Equal(t, 2, ft.Calls("fetch_assignments"))
	assert.Equal(t, "pdf", ft.Forms["create_assignment"][0]["assignment[submission_type]"])
	assert.Equal(t, "true", ft.Forms["create_assignment"][0]["assignment[student_submission]"])

	_, err = c.RemoveAssignment(ctx, roster.ByEntity(hw2))
	require.NoError(t, err)
	as, err = c.Assignments(ctx)
	require.NoError(t, err)
	assert.Len(t, as, 1)
	assert.Equal(t, 2, ft.Calls("fetch_assignments"))
}

func TestNewAssignment_Validate(t *testing.T) {
	base := mirror.NewAssignment{Title: "HW", ReleaseDate: testutil.TestRelease, DueDate: testutil.TestDue}
	require.NoError(t, base.Validate())

	early := base
	early.DueDate = testutil.TestRelease.Add(-time.Hour)
	assert.Error(t, early.Validate())

	hard := base.DueDate.Add(-time.Minute)
	badHard := base
	badHard.HardDueDate = &hard
	assert.Error(t, badHard.Validate())

	badType := base
	badType.SubmissionType = "zip"
	assert.Error(t, badType.Validate())
}
