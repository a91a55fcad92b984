package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/mirror"
)

// FormatCourseList renders courses as a table, marking which side of the
// account each belongs to.
func FormatCourseList(courses []*mirror.Course) string {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		side := StyleBlue.Render("student")
		if c.Instructor {
			side = StylePurple.Render("instructor")
		}
		rows = append(rows, []string{c.ID, c.Nickname, c.CourseName, c.Term, side})
	}
	return RenderTable([]string{"ID", "NICKNAME", "NAME", "TERM", "AS"}, rows)
}

// FormatPeople renders a course roster. People sharing a full name are
// flagged, since only their email selects them uniquely.
func FormatPeople(people []*domain.Person) string {
	names := make(map[string]int, len(people))
	for _, p := range people {
		names[p.FullName]++
	}
	rows := make([][]string, 0, len(people))
	for _, p := range people {
		name := p.FullName
		if names[name] > 1 {
			name += " " + StyleYellow.Render("*")
		}
		sid := p.SID
		if sid == "" {
			sid = Dim("-")
		}
		rows = append(rows, []string{name, p.Email, RoleStyle(p.Role).Render(p.Role.String()), sid})
	}
	out := RenderTable([]string{"NAME", "EMAIL", "ROLE", "SID"}, rows)
	for _, n := range names {
		if n > 1 {
			out += Dim("* shared name; select by email") + "\n"
			break
		}
	}
	return out
}

// FormatAssignmentList renders a course's assignments with their schedule.
func FormatAssignmentList(assignments []*mirror.Assignment, now time.Time) string {
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		info := a.Info()
		limit := Dim("-")
		if info.TimeLimit != nil {
			limit = fmt.Sprintf("%g min", *info.TimeLimit)
		}
		rows = append(rows, []string{
			info.ID,
			info.Title,
			fmt.Sprintf("%g", info.Points),
			Timestamp(info.ReleaseDate),
			DueStyled(info.DueDate, now),
			Timestamp(info.HardDueDate),
			limit,
		})
	}
	return RenderTable([]string{"ID", "TITLE", "POINTS", "RELEASE", "DUE", "HARD DUE", "LIMIT"}, rows)
}

// FormatDiff renders the fields an extension changes. An empty diff means
// every field inherits the assignment.
func FormatDiff(d extension.Diff) string {
	if d.Empty() {
		return Dim("no changes: the student follows the assignment schedule") + "\n"
	}
	var b strings.Builder
	field := func(name, value string) {
		fmt.Fprintf(&b, "  %s %s\n", StyleHeader.Render(fmt.Sprintf("%-18s", name)), value)
	}
	if d.ReleaseDate != nil {
		field("release_date", d.ReleaseDate.Value)
	}
	if d.DueDate != nil {
		field("due_date", d.DueDate.Value)
	}
	if d.HardDueDate != nil {
		field("hard_due_date", d.HardDueDate.Value)
	}
	if d.TimeLimitMinutes != nil {
		field("time_limit_minutes", fmt.Sprintf("%g", *d.TimeLimitMinutes))
	}
	return b.String()
}
