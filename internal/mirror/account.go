package mirror

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/roster"
)

// Account is the root container: the courses visible to the session's user,
// split by whether the user teaches or takes them.
type Account struct {
	sess       *Session
	instructor *roster.Roster[*Course]
	student    *roster.Roster[*Course]
}

// NewAccount returns an empty account bound to sess.
func NewAccount(sess *Session) *Account {
	return &Account{
		sess:       sess,
		instructor: roster.New[*Course](),
		student:    roster.New[*Course](),
	}
}

// Session returns the account's session.
func (a *Account) Session() *Session { return a.sess }

// Load replaces both course lists with the remote account page.
func (a *Account) Load(ctx context.Context) error {
	var rows []domain.CourseRow
	err := a.sess.call(ctx, "list_courses", map[string]any{"email": a.sess.Email}, func(ctx context.Context) error {
		var err error
		rows, err = a.sess.transport.ListCourses(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("load account %s: %w", a.sess.Email, err)
	}
	a.instructor.Clear()
	a.student.Clear()
	for _, r := range rows {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("load account %s: %w", a.sess.Email, err)
		}
		if err := a.AddCourse(NewCourse(a.sess, r)); err != nil {
			return fmt.Errorf("load account %s: %w", a.sess.Email, err)
		}
	}
	return nil
}

// AddCourse registers c under the instructor or student list.
func (a *Account) AddCourse(c *Course) error {
	if c.Instructor {
		return a.instructor.Add(c)
	}
	return a.student.Add(c)
}

// CourseRole restricts a CourseFilter to one side of the account.
type CourseRole int

const (
	AnyCourse CourseRole = iota
	InstructorCourses
	StudentCourses
)

// CourseFilter selects courses by anchored id or name patterns. With no
// patterns every course of the chosen role matches.
type CourseFilter struct {
	IDPatterns   []string
	NamePatterns []string
	Role         CourseRole
}

// Courses returns the union of courses matching f, instructor courses first,
// each course at most once.
func (a *Account) Courses(f CourseFilter) ([]*Course, error) {
	ids, err := roster.CompilePatterns(f.IDPatterns)
	if err != nil {
		return nil, fmt.Errorf("course id %w", err)
	}
	names, err := roster.CompilePatterns(f.NamePatterns)
	if err != nil {
		return nil, fmt.Errorf("course name %w", err)
	}
	matchAll := len(ids) == 0 && len(names) == 0

	var pools []*roster.Roster[*Course]
	if f.Role != StudentCourses {
		pools = append(pools, a.instructor)
	}
	if f.Role != InstructorCourses {
		pools = append(pools, a.student)
	}

	var out []*Course
	for _, pool := range pools {
		for _, c := range pool.All() {
			if matchAll || ids.MatchAny(c.ID) || names.MatchAny(c.CourseName) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// Course returns the course with the given id from either list.
func (a *Account) Course(id string) (*Course, error) {
	if c, ok := a.instructor.Lookup(roster.ByID[*Course](id)); ok {
		return c, nil
	}
	if c, ok := a.student.Lookup(roster.ByID[*Course](id)); ok {
		return c, nil
	}
	return nil, fmt.Errorf("course %s: %w", id, roster.ErrNotFound)
}

// CourseParams describes a course to create.
type CourseParams struct {
	Name             string `validate:"required"`
	Nickname         string `validate:"required"`
	Description      string
	Term             string `validate:"required,oneof=Spring Summer Fall Winter"`
	Year             int    `validate:"required,gte=2000,lte=2100"`
	EntryCodeEnabled bool
}

// CreateCourse creates a course and registers it as an instructor course.
func (a *Account) CreateCourse(ctx context.Context, p CourseParams) (*Course, error) {
	if err := domain.ValidateStruct(p); err != nil {
		return nil, fmt.Errorf("create course %q: %w", p.Name, err)
	}
	form := Form{
		"course[shortname]":          p.Nickname,
		"course[name]":               p.Name,
		"course[description]":        p.Description,
		"course[term]":               p.Term,
		"course[year]":               strconv.Itoa(p.Year),
		"course[entry_code_enabled]": boolFlag(p.EntryCodeEnabled),
	}
	var id string
	err := a.sess.call(ctx, "create_course", map[string]any{"name": p.Name}, func(ctx context.Context) error {
		var err error
		id, err = a.sess.transport.CreateCourse(ctx, form)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create course %q: %w", p.Name, err)
	}
	c := NewCourse(a.sess, domain.CourseRow{
		ID:         id,
		Name:       p.Name,
		Nickname:   p.Nickname,
		Term:       fmt.Sprintf("%s %d", p.Term, p.Year),
		Instructor: true,
	})
	if err := a.instructor.Add(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCourses deletes every instructor course matching f. Student courses
// are never deleted, and a filter without patterns matches nothing. It stops
// at the first failure and returns the courses deleted so far.
func (a *Account) DeleteCourses(ctx context.Context, f CourseFilter) ([]*Course, error) {
	if len(f.IDPatterns) == 0 && len(f.NamePatterns) == 0 {
		return nil, errors.New("delete courses: at least one id or name pattern is required")
	}
	f.Role = InstructorCourses
	matched, err := a.Courses(f)
	if err != nil {
		return nil, err
	}
	var deleted []*Course
	for _, c := range matched {
		if err := c.Delete(ctx); err != nil {
			return deleted, err
		}
		if _, err := a.instructor.Remove(roster.ByEntity(c)); err != nil {
			return deleted, err
		}
		deleted = append(deleted, c)
	}
	return deleted, nil
}
