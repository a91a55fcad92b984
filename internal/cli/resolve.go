package cli

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/alexanderramin/scopesync/internal/roster"
)

// resolveCourse finds a course by id, then by exact name.
func resolveCourse(acct *mirror.Account, ref string) (*mirror.Course, error) {
	if ref == "" {
		return nil, fmt.Errorf("course is required")
	}
	c, err := acct.Course(ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, roster.ErrNotFound) {
		return nil, err
	}

	matches, err := acct.Courses(mirror.CourseFilter{NamePatterns: []string{regexp.QuoteMeta(ref) + "$"}})
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("course %q: %w", ref, roster.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("course name %q: %w (%d matches; use the id)", ref, roster.ErrAmbiguous, len(matches))
	}
}

// personSelector selects by email when ref looks like one, else by name.
func personSelector(ref string) roster.Selector[*domain.Person] {
	if strings.Contains(ref, "@") {
		return roster.ByID[*domain.Person](ref)
	}
	return roster.ByName[*domain.Person](ref)
}

// resolveAssignment finds an assignment by id, then by title.
func resolveAssignment(ctx context.Context, c *mirror.Course, ref string) (*mirror.Assignment, error) {
	a, err := c.Assignment(ctx, roster.ByID[*mirror.Assignment](ref))
	if err == nil || !errors.Is(err, roster.ErrNotFound) {
		return a, err
	}
	return c.Assignment(ctx, roster.ByName[*mirror.Assignment](ref))
}

// questionSelector selects by id when the outline has one, else by title.
func questionSelector(o *outline.Outline, ref string) roster.Selector[*outline.Question] {
	if _, ok := o.Lookup(roster.ByID[*outline.Question](ref)); ok {
		return roster.ByID[*outline.Question](ref)
	}
	return roster.ByName[*outline.Question](ref)
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// parseTime accepts RFC 3339 or a UTC wall-clock date with optional time.
func parseTime(flag, s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --%s %q (expected YYYY-MM-DD[THH:MM] or RFC 3339)", flag, s)
}
