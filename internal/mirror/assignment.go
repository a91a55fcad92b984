package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/alexanderramin/scopesync/internal/roster"
)

// ErrStudentNotFound indicates the email is absent from the assignment's
// extension student list.
var ErrStudentNotFound = errors.New("student not found")

// Assignment mirrors one remote assignment and lazily its question outline.
type Assignment struct {
	info    domain.Assignment
	course  *Course
	outline *outline.Outline
	fresh   freshness
}

func newAssignment(c *Course, info domain.Assignment) *Assignment {
	return &Assignment{info: info, course: c}
}

func (a *Assignment) Name() string     { return a.info.Title }
func (a *Assignment) UniqueID() string { return a.info.ID }
func (a *Assignment) Format() string   { return a.info.Format() }

// ID returns the remote assignment id.
func (a *Assignment) ID() string { return a.info.ID }

// Info returns a copy of the mirrored assignment fields.
func (a *Assignment) Info() domain.Assignment { return a.info }

// HardDueDate returns the hard due date, or the due date when none is set.
func (a *Assignment) HardDueDate() *time.Time { return a.info.EffectiveHardDue() }

// Course returns the owning course.
func (a *Assignment) Course() *Course { return a.course }

// Valid reports whether the outline domain reflects the remote state.
func (a *Assignment) Valid() bool { return a.fresh.valid(DomainOutline) }

func (a *Assignment) sess() *Session { return a.course.sess }

func (a *Assignment) fields() map[string]any {
	return map[string]any{"course_id": a.course.ID, "assignment_id": a.info.ID}
}

// ReloadOutline rebuilds the outline from the remote service.
func (a *Assignment) ReloadOutline(ctx context.Context) error {
	a.fresh.invalidate(DomainOutline)
	start := a.sess().now()
	err := a.reloadOutline(ctx)
	a.sess().reloaded(ctx, DomainOutline, a.fields(), start, err)
	if err != nil {
		return fmt.Errorf("reload outline of assignment %s: %w", a.info.ID, err)
	}
	a.fresh.markValid(DomainOutline)
	return nil
}

func (a *Assignment) reloadOutline(ctx context.Context) error {
	var docs []outline.NodeDoc
	err := a.sess().call(ctx, "fetch_outline", a.fields(), func(ctx context.Context) error {
		var err error
		docs, err = a.sess().transport.FetchOutline(ctx, a.course.ID, a.info.ID)
		return err
	})
	if err != nil {
		return err
	}
	o, err := outline.Build(docs)
	if err != nil {
		return err
	}
	a.outline = o
	return nil
}

func (a *Assignment) ensureOutline(ctx context.Context) error {
	if a.fresh.valid(DomainOutline) {
		return nil
	}
	return a.ReloadOutline(ctx)
}

// LoadOutline returns the outline, reloading it first if invalid.
func (a *Assignment) LoadOutline(ctx context.Context) (*outline.Outline, error) {
	if err := a.ensureOutline(ctx); err != nil {
		return nil, err
	}
	return a.outline, nil
}

// CachedOutline returns the local outline without reloading, including
// questions appended since the last reload. It is nil before the first load.
func (a *Assignment) CachedOutline() *outline.Outline {
	return a.outline
}

// Questions returns every question, parents before their children.
func (a *Assignment) Questions(ctx context.Context) ([]*outline.Question, error) {
	o, err := a.LoadOutline(ctx)
	if err != nil {
		return nil, err
	}
	return o.All(), nil
}

// Question returns the question matching sel.
func (a *Assignment) Question(ctx context.Context, sel roster.Selector[*outline.Question]) (*outline.Question, error) {
	o, err := a.LoadOutline(ctx)
	if err != nil {
		return nil, err
	}
	return o.Get(sel)
}

func (a *Assignment) pushOutline(ctx context.Context) error {
	patch := a.outline.Patch()
	return a.sess().call(ctx, "replace_outline", a.fields(), func(ctx context.Context) error {
		return a.sess().transport.ReplaceOutline(ctx, a.course.ID, a.info.ID, patch)
	})
}

// AddQuestion appends a question locally, sends the full outline, and then
// invalidates the outline so the next read picks up the assigned id. The
// returned question stays local until that reload.
func (a *Assignment) AddQuestion(ctx context.Context, nq outline.NewQuestion) (*outline.Question, error) {
	if err := a.ensureOutline(ctx); err != nil {
		return nil, err
	}
	q, err := a.outline.Insert(nq)
	if err != nil {
		return nil, fmt.Errorf("add question %q to assignment %s: %w", nq.Title, a.info.ID, err)
	}
	err = a.pushOutline(ctx)
	a.fresh.invalidate(DomainOutline)
	if err != nil {
		return nil, fmt.Errorf("add question %q to assignment %s: %w", nq.Title, a.info.ID, err)
	}
	return q, nil
}

// RemoveQuestion detaches the selected question with its subtree and sends
// the full outline. The local outline stays valid on success.
func (a *Assignment) RemoveQuestion(ctx context.Context, sel roster.Selector[*outline.Question]) (*outline.Question, error) {
	if err := a.ensureOutline(ctx); err != nil {
		return nil, err
	}
	q, err := a.outline.Remove(sel)
	if err != nil {
		return nil, fmt.Errorf("remove question %s from assignment %s: %w", sel, a.info.ID, err)
	}
	if err := a.pushOutline(ctx); err != nil {
		a.fresh.invalidate(DomainOutline)
		return nil, fmt.Errorf("remove question %s from assignment %s: %w", q.DisplayID(), a.info.ID, err)
	}
	return q, nil
}

// RemoveQuestions removes every question matched by f. Questions already
// detached as part of an earlier match's subtree are skipped. It stops at the
// first failure and returns the questions removed so far.
func (a *Assignment) RemoveQuestions(ctx context.Context, f outline.Filter) ([]*outline.Question, error) {
	o, err := a.LoadOutline(ctx)
	if err != nil {
		return nil, err
	}
	matched, err := o.Match(f)
	if err != nil {
		return nil, err
	}
	var removed []*outline.Question
	for _, q := range matched {
		if _, ok := o.Lookup(roster.ByEntity(q)); !ok {
			continue
		}
		if _, err := a.RemoveQuestion(ctx, roster.ByEntity(q)); err != nil {
			return removed, err
		}
		removed = append(removed, q)
	}
	return removed, nil
}

// ExtensionStudents returns the assignment's extension student list.
func (a *Assignment) ExtensionStudents(ctx context.Context) ([]ExtensionStudent, error) {
	var students []ExtensionStudent
	err := a.sess().call(ctx, "fetch_extension_students", a.fields(), func(ctx context.Context) error {
		var err error
		students, err = a.sess().transport.FetchExtensionStudents(ctx, a.course.ID, a.info.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("extension students of assignment %s: %w", a.info.ID, err)
	}
	return students, nil
}

// ApplyExtension sends the minimal override diff for the student with email
// and returns the diff that was sent.
func (a *Assignment) ApplyExtension(ctx context.Context, email string, ov extension.Override) (extension.Diff, error) {
	students, err := a.ExtensionStudents(ctx)
	if err != nil {
		return extension.Diff{}, err
	}
	userID := ""
	for _, s := range students {
		if s.Email == email {
			userID = s.ID
			break
		}
	}
	if userID == "" {
		return extension.Diff{}, fmt.Errorf("extension for %s on assignment %s: %w", email, a.info.ID, ErrStudentNotFound)
	}

	payload := extension.NewPayload(extension.ScheduleOf(a.info), ov, userID)
	fields := a.fields()
	fields["email"] = email
	err = a.sess().call(ctx, "apply_override", fields, func(ctx context.Context) error {
		return a.sess().transport.ApplyOverride(ctx, a.course.ID, a.info.ID, payload)
	})
	if err != nil {
		return extension.Diff{}, fmt.Errorf("extension for %s on assignment %s: %w", email, a.info.ID, err)
	}
	return payload.Override.Settings.Diff, nil
}

// RemoveExtension resets the student's schedule to the assignment baseline.
func (a *Assignment) RemoveExtension(ctx context.Context, email string) error {
	_, err := a.ApplyExtension(ctx, email, extension.Override{})
	return err
}

// PublishGrades releases grades to students.
func (a *Assignment) PublishGrades(ctx context.Context) error {
	return a.setPublished(ctx, true)
}

// UnpublishGrades hides grades from students.
func (a *Assignment) UnpublishGrades(ctx context.Context) error {
	return a.setPublished(ctx, false)
}

func (a *Assignment) setPublished(ctx context.Context, published bool) error {
	fields := a.fields()
	fields["published"] = published
	err := a.sess().call(ctx, "update_assignment", fields, func(ctx context.Context) error {
		return a.sess().transport.UpdateAssignment(ctx, a.course.ID, a.info.ID, Form{"assignment[published]": fmt.Sprint(published)})
	})
	if err != nil {
		return fmt.Errorf("set published=%t on assignment %s: %w", published, a.info.ID, err)
	}
	return nil
}

// ExportSubmissions starts a submission export and waits for it to complete.
// It returns the remote file id of the finished export.
func (a *Assignment) ExportSubmissions(ctx context.Context, opts ExportOptions) (string, error) {
	var fileID string
	err := a.sess().call(ctx, "start_export", a.fields(), func(ctx context.Context) error {
		var err error
		fileID, err = a.sess().transport.StartExport(ctx, a.course.ID, a.info.ID)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("export submissions of assignment %s: %w", a.info.ID, err)
	}

	poll := func(ctx context.Context) (ExportStatus, error) {
		var st ExportStatus
		err := a.sess().call(ctx, "export_status", a.fields(), func(ctx context.Context) error {
			var err error
			st, err = a.sess().transport.ExportStatus(ctx, a.course.ID, fileID)
			return err
		})
		return st, err
	}
	if _, err := WaitForExport(ctx, a.sess().now, poll, opts); err != nil {
		return "", fmt.Errorf("export submissions of assignment %s: %w", a.info.ID, err)
	}
	return fileID, nil
}
