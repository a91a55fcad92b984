package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRelease = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	testDue     = time.Date(2025, 9, 8, 23, 59, 0, 0, time.UTC)
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
	}{
		{"student", RoleStudent},
		{"Instructor", RoleInstructor},
		{" ta ", RoleTA},
		{"READER", RoleReader},
		{"0", RoleStudent},
		{"3", RoleReader},
	}
	for _, tc := range cases {
		got, err := ParseRole(tc.in)
		require.NoError(t, err, "input=%q", tc.in)
		assert.Equal(t, tc.want, got, "input=%q", tc.in)
	}

	for _, bad := range []string{"", "dean", "4", "-1"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, "input=%q", bad)
	}
}

func TestRoleCodeAndString(t *testing.T) {
	assert.Equal(t, "2", RoleTA.Code())
	assert.Equal(t, "TA", RoleTA.String())
	assert.Equal(t, "Role(9)", Role(9).String())
	assert.False(t, Role(9).Valid())
}

func TestRosterRow_Validate(t *testing.T) {
	sid := "a1"
	row := RosterRow{DataID: "10", FullName: "Ada Lovelace", Email: "ada@example.edu", SID: &sid, RoleCode: 2}
	require.NoError(t, row.Validate())

	p := row.ToPerson()
	assert.Equal(t, "ada@example.edu", p.UniqueID())
	assert.Equal(t, "Ada Lovelace", p.Name())
	assert.Equal(t, RoleTA, p.Role)
	assert.Contains(t, p.Format(), "SID: a1")

	row.Email = "not-an-email"
	assert.Error(t, row.Validate())

	row.Email = "ada@example.edu"
	row.RoleCode = 7
	assert.Error(t, row.Validate())
}

func TestAssignmentRow_Validate(t *testing.T) {
	row := AssignmentRow{ID: "55", Title: "Homework 1", TotalPoints: 10, ReleaseDate: &testRelease, DueDate: &testDue}
	require.NoError(t, row.Validate())

	a := row.ToAssignment()
	assert.Equal(t, &testDue, a.EffectiveHardDue(), "hard due falls back to due")

	hard := testDue.Add(48 * time.Hour)
	a.HardDueDate = &hard
	assert.Equal(t, &hard, a.EffectiveHardDue())

	row.ID = "abc"
	assert.Error(t, row.Validate())

	row.ID = "55"
	row.DueDate, row.ReleaseDate = &testRelease, &testDue
	assert.ErrorContains(t, row.Validate(), "due date before release date")
}

func TestCourseRow_Validate(t *testing.T) {
	require.NoError(t, CourseRow{ID: "100", Name: "Intro"}.Validate())
	assert.Error(t, CourseRow{ID: "100"}.Validate())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "ta", CoalesceStr("", "  ", "ta", "reader"))
	assert.Equal(t, "", CoalesceStr())

	f := false
	assert.True(t, BoolFromPtrWithDefault(true))
	assert.True(t, BoolFromPtrWithDefault(true, nil))
	assert.False(t, BoolFromPtrWithDefault(true, nil, &f))
}
