package formatter

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/alexanderramin/scopesync/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"A", "LONG HEADER"}, [][]string{
		{"wide cell", "x"},
		{StyleRed.Render("ab"), "y"},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A          LONG HEADER", lines[0])
	assert.Equal(t, "ab         y", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderOutline(t *testing.T) {
	o, err := outline.Build(testutil.NewTestOutline(3))
	require.NoError(t, err)
	_, err = o.Insert(outline.NewQuestion{Title: "Bonus", Weight: 1})
	require.NoError(t, err)

	out := stripANSI(RenderOutline(o))
	assert.Contains(t, out, "├─ 3001 Test Question 1")
	assert.Contains(t, out, "│  ├─ ")
	assert.Contains(t, out, "│  └─ ")
	assert.Contains(t, out, "└─ (pending) Bonus")
	assert.Contains(t, out, "[ 1 pts ]")

	assert.Contains(t, RenderOutline(outline.New()), "empty outline")
}

func TestFormatPeople_FlagsSharedNames(t *testing.T) {
	people := []*domain.Person{
		{FullName: "Sam Lee", Email: "sam.lee@example.edu", Role: domain.RoleStudent},
		{FullName: "Sam Lee", Email: "slee2@example.edu", Role: domain.RoleTA, SID: "s2"},
	}
	out := stripANSI(FormatPeople(people))
	assert.Contains(t, out, "Sam Lee *")
	assert.Contains(t, out, "shared name")
	assert.Contains(t, out, "TA")
}

func TestFormatCourseAndAssignmentLists(t *testing.T) {
	ctx := context.Background()
	acct := mirror.NewAccount(mirror.NewSession(testutil.TestEmail, testutil.NewSeededTransport()))
	require.NoError(t, acct.Load(ctx))

	courses, err := acct.Courses(mirror.CourseFilter{})
	require.NoError(t, err)
	out := stripANSI(FormatCourseList(courses))
	assert.Contains(t, out, "Intro to Testing")
	assert.Contains(t, out, "instructor")
	assert.Contains(t, out, "student")

	as, err := courses[0].Assignments(ctx)
	require.NoError(t, err)
	out = stripANSI(FormatAssignmentList(as, testutil.TestDue.Add(-24*time.Hour)))
	assert.Contains(t, out, "Homework 1")
	assert.Contains(t, out, "2025-09-08 23:59 (Tomorrow)")
	assert.Contains(t, out, "60 min")
}

func TestFormatDiff(t *testing.T) {
	limit := 90.0
	out := stripANSI(FormatDiff(extension.Diff{
		DueDate:          extension.FormatDate(testutil.TestDue),
		TimeLimitMinutes: &limit,
	}))
	assert.Contains(t, out, "2025-09-08T23:59")
	assert.Contains(t, out, "90")
	assert.NotContains(t, out, "release_date")

	assert.Contains(t, FormatDiff(extension.Diff{}), "no changes")
}

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		offset time.Duration
		want   string
	}{
		{0, "Today"},
		{24 * time.Hour, "Tomorrow"},
		{-24 * time.Hour, "Yesterday"},
		{5 * 24 * time.Hour, "In 5d"},
		{21 * 24 * time.Hour, "In 3w"},
		{-3 * 24 * time.Hour, "3d ago"},
		{-28 * 24 * time.Hour, "4w ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RelativeDateFrom(now.Add(tt.offset), now))
	}
}

func TestRenderProgress_Clamps(t *testing.T) {
	assert.Contains(t, stripANSI(RenderProgress(1.5, 4)), "[████] 100%")
	assert.Contains(t, stripANSI(RenderProgress(-1, 4)), "[░░░░]   0%")
	assert.Contains(t, stripANSI(RenderProgress(0.5, 1)), "[█░]  50%")
}

func TestDelta(t *testing.T) {
	cases := map[time.Duration]string{
		30 * time.Minute: "30m",
		5 * time.Hour:    "5h",
		48 * time.Hour:   "2d",
		36 * time.Hour:   "1d12h",
	}
	for d, want := range cases {
		assert.Equal(t, want, Delta(d), "duration=%s", d)
	}
}
