package mirror_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/roster"
	"github.com/alexanderramin/scopesync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedAccount(t *testing.T, opts ...mirror.SessionOption) (*mirror.Account, *testutil.FakeTransport) {
	t.Helper()
	ft := testutil.NewSeededTransport()
	acct := mirror.NewAccount(mirror.NewSession(testutil.TestEmail, ft, opts...))
	require.NoError(t, acct.Load(context.Background()))
	return acct, ft
}

func TestAccount_CoursesByRole(t *testing.T) {
	acct, _ := loadedAccount(t)

	all, err := acct.Courses(mirror.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	teaching, err := acct.Courses(mirror.CourseFilter{Role: mirror.InstructorCourses})
	require.NoError(t, err)
	require.Len(t, teaching, 1)
	assert.Equal(t, testutil.TestCourseID, teaching[0].ID)

	taking, err := acct.Courses(mirror.CourseFilter{Role: mirror.StudentCourses})
	require.NoError(t, err)
	require.Len(t, taking, 1)
	assert.Equal(t, "101", taking[0].ID)
}

func TestAccount_CoursesByPatternUnion(t *testing.T) {
	acct, _ := loadedAccount(t)

	got, err := acct.Courses(mirror.CourseFilter{IDPatterns: []string{"10[01]"}, NamePatterns: []string{"Intro"}})
	require.NoError(t, err)
	assert.Len(t, got, 2, "a course matched by both patterns appears once")

	got, err = acct.Courses(mirror.CourseFilter{NamePatterns: []string{"Testing"}})
	require.NoError(t, err)
	assert.Empty(t, got, "patterns are anchored at the start")

	_, err = acct.Courses(mirror.CourseFilter{IDPatterns: []string{"("}})
	assert.Error(t, err)
}

func TestAccount_CreateCourse(t *testing.T) {
	ctx := context.Background()
	acct, ft := loadedAccount(t)

	c, err := acct.CreateCourse(ctx, mirror.CourseParams{Name: "Compilers", Nickname: "CS 164", Term: "Spring", Year: 2026})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.True(t, c.Instructor)
	assert.Equal(t, "Spring 2026", c.Term)
	assert.Equal(t, "CS 164", ft.Forms["create_course"][0]["course[shortname]"])

	found, err := acct.Course(c.ID)
	require.NoError(t, err)
	assert.Same(t, c, found)
}

func TestAccount_CreateCourseValidatesBeforeCalling(t *testing.T) {
	acct, ft := loadedAccount(t)
	_, err := acct.CreateCourse(context.Background(), mirror.CourseParams{Name: "X", Nickname: "X", Term: "Autumn", Year: 2026})
	require.Error(t, err)
	assert.Zero(t, ft.Calls("create_course"))
}

func TestAccount_DeleteCoursesOnlyInstructor(t *testing.T) {
	ctx := context.Background()
	acct, ft := loadedAccount(t)

	deleted, err := acct.DeleteCourses(ctx, mirror.CourseFilter{IDPatterns: []string{"10"}})
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, testutil.TestCourseID, deleted[0].ID)
	assert.Equal(t, 1, ft.Calls("delete_course"))

	_, err = acct.Course(testutil.TestCourseID)
	assert.ErrorIs(t, err, roster.ErrNotFound)
	_, err = acct.Course("101")
	assert.NoError(t, err)
}

func TestAccount_DeleteCoursesRequiresPattern(t *testing.T) {
	acct, ft := loadedAccount(t)
	_, err := acct.DeleteCourses(context.Background(), mirror.CourseFilter{})
	require.Error(t, err)
	assert.Zero(t, ft.Calls("delete_course"))
}

func TestSession_ObserverReceivesEvents(t *testing.T) {
	obs := &testutil.RecordingObserver{}
	acct, ft := loadedAccount(t, mirror.WithObserver(obs))
	c, err := acct.Course(testutil.TestCourseID)
	require.NoError(t, err)

	ft.Fail["fetch_roster"] = nil
	_, err = c.Person(context.Background(), roster.ByID[*domain.Person]("ada@example.edu"))
	require.Error(t, err)

	calls := obs.Named("fetch_roster")
	require.Len(t, calls, 1)
	assert.Equal(t, mirror.EventRemoteCall, calls[0].Kind)
	assert.False(t, calls[0].Success)
	assert.Equal(t, testutil.TestCourseID, calls[0].Fields["course_id"])

	reloads := obs.Named("reload_roster")
	require.Len(t, reloads, 1)
	assert.Equal(t, mirror.DomainRoster, reloads[0].Domain)
	assert.False(t, reloads[0].Success)
}

func TestLogObserver_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	obs := mirror.NewLogObserver(&buf)
	obs.Observe(context.Background(), mirror.Event{Kind: mirror.EventReload, Name: "reload_outline", Domain: mirror.DomainOutline, Success: true})

	line := buf.String()
	assert.Contains(t, line, "msg=mirror_reload")
	assert.Contains(t, line, "domain=outline")
	assert.Contains(t, line, "success=true")

	assert.IsType(t, mirror.NoopObserver{}, mirror.NewLogObserver(nil))
}
