package mirror

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/roster"
)

// formDateLayout is the timestamp layout for date form fields.
const formDateLayout = time.RFC3339

// Course mirrors one remote course: its roster and its assignments.
type Course struct {
	ID         string
	CourseName string
	Nickname   string
	Term       string
	Instructor bool

	sess        *Session
	people      *roster.Roster[*domain.Person]
	assignments *roster.Roster[*Assignment]
	fresh       freshness
}

// NewCourse returns a course container with every domain invalid.
func NewCourse(sess *Session, row domain.CourseRow) *Course {
	return &Course{
		ID:          row.ID,
		CourseName:  row.Name,
		Nickname:    row.Nickname,
		Term:        row.Term,
		Instructor:  row.Instructor,
		sess:        sess,
		people:      roster.New[*domain.Person](),
		assignments: roster.New[*Assignment](),
	}
}

func (c *Course) Name() string     { return c.CourseName }
func (c *Course) UniqueID() string { return c.ID }

func (c *Course) Format() string {
	return fmt.Sprintf("Name: %s\nID: %s\nTerm: %s", c.CourseName, c.ID, c.Term)
}

// Valid reports whether domain d currently reflects the remote state.
func (c *Course) Valid(d Domain) bool {
	return c.fresh.valid(d)
}

func (c *Course) fields() map[string]any {
	return map[string]any{"course_id": c.ID}
}

// ReloadRoster discards the local roster and rebuilds it from the remote
// service. On failure the roster domain stays invalid.
func (c *Course) ReloadRoster(ctx context.Context) error {
	c.fresh.invalidate(DomainRoster)
	start := c.sess.now()
	err := c.reloadRoster(ctx)
	c.sess.reloaded(ctx, DomainRoster, c.fields(), start, err)
	if err != nil {
		return fmt.Errorf("reload roster of course %s: %w", c.ID, err)
	}
	c.fresh.markValid(DomainRoster)
	return nil
}

func (c *Course) reloadRoster(ctx context.Context) error {
	var rows []domain.RosterRow
	err := c.sess.call(ctx, "fetch_roster", c.fields(), func(ctx context.Context) error {
		var err error
		rows, err = c.sess.transport.FetchRoster(ctx, c.ID)
		return err
	})
	if err != nil {
		return err
	}
	c.people.Clear()
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
		if err := c.people.Add(row.ToPerson()); err != nil {
			return err
		}
	}
	return nil
}

func (c *Course) ensureRoster(ctx context.Context) error {
	if c.fresh.valid(DomainRoster) {
		return nil
	}
	return c.ReloadRoster(ctx)
}

// People returns every member in roster order.
func (c *Course) People(ctx context.Context) ([]*domain.Person, error) {
	if err := c.ensureRoster(ctx); err != nil {
		return nil, err
	}
	return c.people.All(), nil
}

// Person returns the member matching sel.
func (c *Course) Person(ctx context.Context, sel roster.Selector[*domain.Person]) (*domain.Person, error) {
	if err := c.ensureRoster(ctx); err != nil {
		return nil, err
	}
	p, err := c.people.Get(sel)
	if err != nil {
		return nil, fmt.Errorf("person %s in course %s: %w", sel, c.ID, err)
	}
	return p, nil
}

// NewPerson describes a member to add.
type NewPerson struct {
	Name   string
	Email  string
	SID    string
	Role   domain.Role
	Notify bool
}

// AddPerson creates a membership remotely. The service does not return the
// membership id, so the roster is invalidated and re-read on next access.
func (c *Course) AddPerson(ctx context.Context, np NewPerson) error {
	if !np.Role.Valid() {
		return fmt.Errorf("add person %s: unknown role %d", np.Email, int(np.Role))
	}
	form := Form{
		"user[name]":              np.Name,
		"user[email]":             np.Email,
		"user[sid]":               np.SID,
		"course_membership[role]": np.Role.Code(),
	}
	if np.Notify {
		form["notify_by_email"] = "1"
	}
	fields := c.fields()
	fields["email"] = np.Email
	err := c.sess.call(ctx, "create_membership", fields, func(ctx context.Context) error {
		return c.sess.transport.CreateMembership(ctx, c.ID, form)
	})
	c.fresh.invalidate(DomainRoster)
	if err != nil {
		return fmt.Errorf("add person %s to course %s: %w", np.Email, c.ID, err)
	}
	return nil
}

// RemovePerson deletes the selected membership and drops it from the local
// roster without a reload.
func (c *Course) RemovePerson(ctx context.Context, sel roster.Selector[*domain.Person]) (*domain.Person, error) {
	p, err := c.Person(ctx, sel)
	if err != nil {
		return nil, err
	}
	fields := c.fields()
	fields["email"] = p.Email
	err = c.sess.call(ctx, "delete_membership", fields, func(ctx context.Context) error {
		return c.sess.transport.DeleteMembership(ctx, c.ID, p.DataID)
	})
	if err != nil {
		c.fresh.invalidate(DomainRoster)
		return nil, fmt.Errorf("remove person %s from course %s: %w", p.Email, c.ID, err)
	}
	if _, err := c.people.Remove(roster.ByEntity(p)); err != nil {
		c.fresh.invalidate(DomainRoster)
		return nil, err
	}
	return p, nil
}

// ChangeRole updates the selected member's role remotely and in place.
func (c *Course) ChangeRole(ctx context.Context, sel roster.Selector[*domain.Person], role domain.Role) (*domain.Person, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("change role: unknown role %d", int(role))
	}
	p, err := c.Person(ctx, sel)
	if err != nil {
		return nil, err
	}
	fields := c.fields()
	fields["email"] = p.Email
	fields["role"] = role.String()
	err = c.sess.call(ctx, "update_membership_role", fields, func(ctx context.Context) error {
		return c.sess.transport.UpdateMembershipRole(ctx, c.ID, p.DataID, Form{"course_membership[role]": role.Code()})
	})
	if err != nil {
		c.fresh.invalidate(DomainRoster)
		return nil, fmt.Errorf("change role of %s in course %s: %w", p.Email, c.ID, err)
	}
	p.Role = role
	return p, nil
}

// ReloadAssignments discards the local assignments and rebuilds them from the
// remote service. Cached outlines of the previous containers are dropped.
func (c *Course) ReloadAssignments(ctx context.Context) error {
	c.fresh.invalidate(DomainAssignments)
	start := c.sess.now()
	err := c.reloadAssignments(ctx)
	c.sess.reloaded(ctx, DomainAssignments, c.fields(), start, err)
	if err != nil {
		return fmt.Errorf("reload assignments of course %s: %w", c.ID, err)
	}
	c.fresh.markValid(DomainAssignments)
	return nil
}

func (c *Course) reloadAssignments(ctx context.Context) error {
	var rows []domain.AssignmentRow
	err := c.sess.call(ctx, "fetch_assignments", c.fields(), func(ctx context.Context) error {
		var err error
		rows, err = c.sess.transport.FetchAssignments(ctx, c.ID)
		return err
	})
	if err != nil {
		return err
	}
	c.assignments.Clear()
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return err
		}
		if err := c.assignments.Add(newAssignment(c, row.ToAssignment())); err != nil {
			return err
		}
	}
	return nil
}

func (c *Course) ensureAssignments(ctx context.Context) error {
	if c.fresh.valid(DomainAssignments) {
		return nil
	}
	return c.ReloadAssignments(ctx)
}

// Assignments returns every assignment in remote order.
func (c *Course) Assignments(ctx context.Context) ([]*Assignment, error) {
	if err := c.ensureAssignments(ctx); err != nil {
		return nil, err
	}
	return c.assignments.All(), nil
}

// Assignment returns the assignment matching sel.
func (c *Course) Assignment(ctx context.Context, sel roster.Selector[*Assignment]) (*Assignment, error) {
	if err := c.ensureAssignments(ctx); err != nil {
		return nil, err
	}
	a, err := c.assignments.Get(sel)
	if err != nil {
		return nil, fmt.Errorf("assignment %s in course %s: %w", sel, c.ID, err)
	}
	return a, nil
}

// NewAssignment describes an assignment to create.
type NewAssignment struct {
	Title              string
	ReleaseDate        time.Time
	DueDate            time.Time
	TemplatePath       string
	SubmissionType     domain.SubmissionType
	StudentSubmissions bool
	AllowLate          bool
	HardDueDate        *time.Time
	GroupSubmission    bool
	GroupSize          int
}

// Validate checks the creation parameters before any remote call.
func (na NewAssignment) Validate() error {
	if na.Title == "" {
		return fmt.Errorf("new assignment: title is required")
	}
	if na.DueDate.Before(na.ReleaseDate) {
		return fmt.Errorf("new assignment %q: due date before release date", na.Title)
	}
	if na.HardDueDate != nil && na.HardDueDate.Before(na.DueDate) {
		return fmt.Errorf("new assignment %q: hard due date before due date", na.Title)
	}
	switch na.SubmissionType {
	case "", domain.SubmissionImage, domain.SubmissionPDF:
	default:
		return fmt.Errorf("new assignment %q: unknown submission type %q", na.Title, na.SubmissionType)
	}
	return nil
}

func (na NewAssignment) form() Form {
	st := na.SubmissionType
	if st == "" {
		st = domain.SubmissionImage
	}
	form := Form{
		"assignment[title]":                  na.Title,
		"assignment[student_submission]":     strconv.FormatBool(na.StudentSubmissions),
		"assignment[release_date_string]":    na.ReleaseDate.Format(formDateLayout),
		"assignment[due_date_string]":        na.DueDate.Format(formDateLayout),
		"assignment[allow_late_submissions]": boolFlag(na.AllowLate),
		"assignment[submission_type]":        string(st),
		"assignment[group_submission]":       boolFlag(na.GroupSubmission),
		"template_pdf":                       na.TemplatePath,
	}
	if na.AllowLate && na.HardDueDate != nil {
		form["assignment[hard_due_date_string]"] = na.HardDueDate.Format(formDateLayout)
	}
	if na.GroupSubmission && na.GroupSize > 0 {
		form["assignment[group_size]"] = strconv.Itoa(na.GroupSize)
	}
	return form
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// AddAssignment creates an assignment remotely and invalidates the local
// assignments, since the new id is not returned.
func (c *Course) AddAssignment(ctx context.Context, na NewAssignment) error {
	if err := na.Validate(); err != nil {
		return err
	}
	fields := c.fields()
	fields["title"] = na.Title
	err := c.sess.call(ctx, "create_assignment", fields, func(ctx context.Context) error {
		return c.sess.transport.CreateAssignment(ctx, c.ID, na.form())
	})
	c.fresh.invalidate(DomainAssignments)
	if err != nil {
		return fmt.Errorf("add assignment %q to course %s: %w", na.Title, c.ID, err)
	}
	return nil
}

// RemoveAssignment deletes the selected assignment and drops it locally.
func (c *Course) RemoveAssignment(ctx context.Context, sel roster.Selector[*Assignment]) (*Assignment, error) {
	a, err := c.Assignment(ctx, sel)
	if err != nil {
		return nil, err
	}
	err = c.sess.call(ctx, "delete_assignment", a.fields(), func(ctx context.Context) error {
		return c.sess.transport.DeleteAssignment(ctx, c.ID, a.ID())
	})
	if err != nil {
		c.fresh.invalidate(DomainAssignments)
		return nil, fmt.Errorf("remove assignment %s from course %s: %w", a.ID(), c.ID, err)
	}
	if _, err := c.assignments.Remove(roster.ByEntity(a)); err != nil {
		c.fresh.invalidate(DomainAssignments)
		return nil, err
	}
	return a, nil
}

// Delete removes the course remotely.
func (c *Course) Delete(ctx context.Context) error {
	err := c.sess.call(ctx, "delete_course", c.fields(), func(ctx context.Context) error {
		return c.sess.transport.DeleteCourse(ctx, c.ID)
	})
	if err != nil {
		return fmt.Errorf("delete course %s: %w", c.ID, err)
	}
	c.people.Clear()
	c.assignments.Clear()
	c.fresh = freshness{}
	return nil
}
