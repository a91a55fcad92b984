// Package sandbox implements the remote course service against a local
// SQLite database. It honours the same contract as the hosted service:
// creates assign ids without reporting them, outline replacement is
// destructive, and exports complete only after repeated polling.
package sandbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alexanderramin/scopesync/internal/db"
	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/outline"
	"github.com/alexanderramin/scopesync/internal/repository"
	"github.com/google/uuid"
)

// ErrBadRequest indicates a form or payload the service would reject.
var ErrBadRequest = errors.New("bad request")

const defaultExportPolls = 2

// Remote is a mirror.Transport backed by the sandbox database.
type Remote struct {
	db          *sql.DB
	uow         db.UnitOfWork
	exportPolls int
}

// Option configures a Remote.
type Option func(*Remote)

// WithExportPolls sets how many status polls an export needs to complete.
func WithExportPolls(n int) Option {
	return func(r *Remote) {
		if n > 0 {
			r.exportPolls = n
		}
	}
}

// WithUnitOfWork replaces the transaction runner.
func WithUnitOfWork(uow db.UnitOfWork) Option {
	return func(r *Remote) {
		if uow != nil {
			r.uow = uow
		}
	}
}

// New returns a Remote over an opened sandbox database.
func New(database *sql.DB, opts ...Option) *Remote {
	r := &Remote{
		db:          database,
		uow:         db.NewSQLiteUnitOfWork(database),
		exportPolls: defaultExportPolls,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// UnitOfWork exposes the transaction runner used for seeding.
func (r *Remote) UnitOfWork() db.UnitOfWork { return r.uow }

func (r *Remote) ListCourses(ctx context.Context) ([]domain.CourseRow, error) {
	recs, err := repository.NewSQLiteCourseRepo(r.db).List(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.CourseRow, 0, len(recs))
	for _, c := range recs {
		rows = append(rows, domain.CourseRow{ID: c.ID, Name: c.Name, Nickname: c.Nickname, Term: c.Term, Instructor: c.Instructor})
	}
	return rows, nil
}

func (r *Remote) CreateCourse(ctx context.Context, form mirror.Form) (string, error) {
	name := form["course[name]"]
	if name == "" {
		return "", fmt.Errorf("%w: course name is required", ErrBadRequest)
	}
	term := form["course[term]"]
	if year := form["course[year]"]; year != "" {
		term = term + " " + year
	}
	var id string
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		id, err = repository.NewSQLiteSequenceRepo(tx).Next(ctx)
		if err != nil {
			return err
		}
		return repository.NewSQLiteCourseRepo(tx).Create(ctx, &repository.CourseRecord{
			ID:          id,
			Name:        name,
			Nickname:    form["course[shortname]"],
			Description: form["course[description]"],
			Term:        term,
			Instructor:  true,
		})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Remote) DeleteCourse(ctx context.Context, courseID string) error {
	return repository.NewSQLiteCourseRepo(r.db).Delete(ctx, courseID)
}

func (r *Remote) FetchRoster(ctx context.Context, courseID string) ([]domain.RosterRow, error) {
	if _, err := repository.NewSQLiteCourseRepo(r.db).GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	members, err := repository.NewSQLiteMembershipRepo(r.db).ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.RosterRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, domain.RosterRow{
			DataID:   m.ID,
			FullName: m.FullName,
			Email:    m.Email,
			SID:      m.SID,
			RoleCode: int(m.Role),
		})
	}
	return rows, nil
}

func (r *Remote) CreateMembership(ctx context.Context, courseID string, form mirror.Form) error {
	role, err := parseRole(form["course_membership[role]"])
	if err != nil {
		return err
	}
	m := &repository.Membership{
		CourseID: courseID,
		FullName: form["user[name]"],
		Email:    form["user[email]"],
		Role:     role,
	}
	if m.FullName == "" || m.Email == "" {
		return fmt.Errorf("%w: user name and email are required", ErrBadRequest)
	}
	if sid := form["user[sid]"]; sid != "" {
		m.SID = &sid
	}
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return createMembership(ctx, tx, m)
	})
}

// createMembership allocates the membership and user ids and stores m.
func createMembership(ctx context.Context, tx db.DBTX, m *repository.Membership) error {
	seq := repository.NewSQLiteSequenceRepo(tx)
	var err error
	if m.ID, err = seq.Next(ctx); err != nil {
		return err
	}
	if m.UserID, err = seq.Next(ctx); err != nil {
		return err
	}
	return repository.NewSQLiteMembershipRepo(tx).Create(ctx, m)
}

func (r *Remote) DeleteMembership(ctx context.Context, courseID, membershipID string) error {
	repo := repository.NewSQLiteMembershipRepo(r.db)
	m, err := repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if m.CourseID != courseID {
		return fmt.Errorf("membership %s in course %s: %w", membershipID, courseID, repository.ErrNotFound)
	}
	return repo.Delete(ctx, membershipID)
}

func (r *Remote) UpdateMembershipRole(ctx context.Context, courseID, membershipID string, form mirror.Form) error {
	role, err := parseRole(form["course_membership[role]"])
	if err != nil {
		return err
	}
	repo := repository.NewSQLiteMembershipRepo(r.db)
	m, err := repo.GetByID(ctx, membershipID)
	if err != nil {
		return err
	}
	if m.CourseID != courseID {
		return fmt.Errorf("membership %s in course %s: %w", membershipID, courseID, repository.ErrNotFound)
	}
	return repo.UpdateRole(ctx, membershipID, role)
}

func parseRole(code string) (domain.Role, error) {
	n, err := strconv.Atoi(code)
	if err != nil || !domain.Role(n).Valid() {
		return 0, fmt.Errorf("%w: role %q", ErrBadRequest, code)
	}
	return domain.Role(n), nil
}

func (r *Remote) FetchAssignments(ctx context.Context, courseID string) ([]domain.AssignmentRow, error) {
	if _, err := repository.NewSQLiteCourseRepo(r.db).GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	recs, err := repository.NewSQLiteAssignmentRepo(r.db).ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.AssignmentRow, 0, len(recs))
	for _, a := range recs {
		rows = append(rows, domain.AssignmentRow{
			ID:            a.ID,
			Title:         a.Title,
			TotalPoints:   a.Points,
			Submissions:   a.Submissions,
			GradingPct:    a.PercentGraded,
			RegradesOn:    a.RegradesOn,
			ReleaseDate:   a.ReleaseDate,
			DueDate:       a.DueDate,
			HardDueDate:   a.HardDueDate,
			TimeLimitMins: a.TimeLimit,
		})
	}
	return rows, nil
}

func (r *Remote) CreateAssignment(ctx context.Context, courseID string, form mirror.Form) error {
	a, err := assignmentFromForm(courseID, form)
	if err != nil {
		return err
	}
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := repository.NewSQLiteCourseRepo(tx).GetByID(ctx, courseID); err != nil {
			return err
		}
		id, err := repository.NewSQLiteSequenceRepo(tx).Next(ctx)
		if err != nil {
			return err
		}
		a.ID = id
		return repository.NewSQLiteAssignmentRepo(tx).Create(ctx, a)
	})
}

func assignmentFromForm(courseID string, form mirror.Form) (*repository.AssignmentRecord, error) {
	a := &repository.AssignmentRecord{
		CourseID:       courseID,
		Title:          form["assignment[title]"],
		SubmissionType: domain.SubmissionType(form["assignment[submission_type]"]),
		TemplatePath:   form["template_pdf"],
	}
	if a.Title == "" {
		return nil, fmt.Errorf("%w: assignment title is required", ErrBadRequest)
	}
	var err error
	if a.ReleaseDate, err = formTime(form, "assignment[release_date_string]"); err != nil {
		return nil, err
	}
	if a.DueDate, err = formTime(form, "assignment[due_date_string]"); err != nil {
		return nil, err
	}
	if a.HardDueDate, err = formTime(form, "assignment[hard_due_date_string]"); err != nil {
		return nil, err
	}
	return a, nil
}

func formTime(form mirror.Form, key string) (*time.Time, error) {
	v, ok := form[key]
	if !ok || v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadRequest, key, err)
	}
	return &t, nil
}

func (r *Remote) DeleteAssignment(ctx context.Context, courseID, assignmentID string) error {
	if err := r.checkAssignment(ctx, r.db, courseID, assignmentID); err != nil {
		return err
	}
	return repository.NewSQLiteAssignmentRepo(r.db).Delete(ctx, assignmentID)
}

func (r *Remote) UpdateAssignment(ctx context.Context, courseID, assignmentID string, form mirror.Form) error {
	if err := r.checkAssignment(ctx, r.db, courseID, assignmentID); err != nil {
		return err
	}
	v, ok := form["assignment[published]"]
	if !ok {
		return nil
	}
	published, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: assignment[published] %q", ErrBadRequest, v)
	}
	return repository.NewSQLiteAssignmentRepo(r.db).SetPublished(ctx, assignmentID, published)
}

func (r *Remote) checkAssignment(ctx context.Context, conn db.DBTX, courseID, assignmentID string) error {
	a, err := repository.NewSQLiteAssignmentRepo(conn).GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if a.CourseID != courseID {
		return fmt.Errorf("assignment %s in course %s: %w", assignmentID, courseID, repository.ErrNotFound)
	}
	return nil
}

func (r *Remote) FetchOutline(ctx context.Context, courseID, assignmentID string) ([]outline.NodeDoc, error) {
	if err := r.checkAssignment(ctx, r.db, courseID, assignmentID); err != nil {
		return nil, err
	}
	recs, err := repository.NewSQLiteQuestionRepo(r.db).ListByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return buildDocs(recs)
}

// buildDocs nests stored question rows into documents, siblings in
// order_index order.
func buildDocs(recs []*repository.QuestionRecord) ([]outline.NodeDoc, error) {
	children := make(map[string][]*repository.QuestionRecord)
	for _, q := range recs {
		key := ""
		if q.ParentID != nil {
			key = *q.ParentID
		}
		children[key] = append(children[key], q)
	}
	var build func(parent string) ([]outline.NodeDoc, error)
	build = func(parent string) ([]outline.NodeDoc, error) {
		kids := children[parent]
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].OrderIndex < kids[j].OrderIndex })
		docs := make([]outline.NodeDoc, 0, len(kids))
		for _, q := range kids {
			var crop []outline.CropRect
			if err := json.Unmarshal(q.Crop, &crop); err != nil {
				return nil, fmt.Errorf("question %s crop: %w", q.ID, err)
			}
			sub, err := build(q.ID)
			if err != nil {
				return nil, err
			}
			id := q.ID
			docs = append(docs, outline.NodeDoc{
				ID:       &id,
				Title:    q.Title,
				Weight:   q.Weight,
				Type:     string(q.Type),
				ParentID: q.ParentID,
				Content:  q.Content,
				Crop:     crop,
				Children: sub,
			})
		}
		return docs, nil
	}
	return build("")
}

// ReplaceOutline deletes the assignment's questions and inserts the patch
// tree in one transaction. Nodes without an id are assigned one; nodes with
// children become groups.
func (r *Remote) ReplaceOutline(ctx context.Context, courseID, assignmentID string, patch outline.Patch) error {
	return r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := r.checkAssignment(ctx, tx, courseID, assignmentID); err != nil {
			return err
		}
		questions := repository.NewSQLiteQuestionRepo(tx)
		if err := questions.DeleteByAssignment(ctx, assignmentID); err != nil {
			return err
		}
		seq := repository.NewSQLiteSequenceRepo(tx)
		seen := make(map[string]bool)

		var insert func(docs []outline.NodeDoc, parent *string) error
		insert = func(docs []outline.NodeDoc, parent *string) error {
			for i, d := range docs {
				id := ""
				if d.ID != nil {
					id = *d.ID
				} else {
					next, err := seq.Next(ctx)
					if err != nil {
						return err
					}
					id = next
				}
				if seen[id] {
					return fmt.Errorf("%w: duplicate question id %s", ErrBadRequest, id)
				}
				seen[id] = true

				qt := domain.QuestionFreeResponse
				if len(d.Children) > 0 {
					qt = domain.QuestionGroup
				}
				var crop []byte
				if len(d.Crop) > 0 {
					var err error
					if crop, err = json.Marshal(d.Crop); err != nil {
						return err
					}
				}
				rec := &repository.QuestionRecord{
					ID:           id,
					AssignmentID: assignmentID,
					ParentID:     parent,
					Title:        d.Title,
					Weight:       d.Weight,
					Type:         qt,
					Content:      d.Content,
					Crop:         crop,
					OrderIndex:   i,
				}
				if err := questions.Create(ctx, rec); err != nil {
					return err
				}
				if err := insert(d.Children, &id); err != nil {
					return err
				}
			}
			return nil
		}
		return insert(patch.QuestionData, nil)
	})
}

// FetchExtensionStudents lists the course's students with their user ids.
func (r *Remote) FetchExtensionStudents(ctx context.Context, courseID, assignmentID string) ([]mirror.ExtensionStudent, error) {
	if err := r.checkAssignment(ctx, r.db, courseID, assignmentID); err != nil {
		return nil, err
	}
	members, err := repository.NewSQLiteMembershipRepo(r.db).ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	var out []mirror.ExtensionStudent
	for _, m := range members {
		if m.Role == domain.RoleStudent {
			out = append(out, mirror.ExtensionStudent{ID: m.UserID, Email: m.Email})
		}
	}
	return out, nil
}

// ApplyOverride stores the settings document for the student, replacing any
// earlier one.
func (r *Remote) ApplyOverride(ctx context.Context, courseID, assignmentID string, payload extension.Payload) error {
	if err := r.checkAssignment(ctx, r.db, courseID, assignmentID); err != nil {
		return err
	}
	if payload.Override.UserID == "" {
		return fmt.Errorf("%w: override user_id is required", ErrBadRequest)
	}
	settings, err := json.Marshal(payload.Override.Settings)
	if err != nil {
		return err
	}
	return repository.NewSQLiteOverrideRepo(r.db).Upsert(ctx, &repository.OverrideRecord{
		AssignmentID: assignmentID,
		UserID:       payload.Override.UserID,
		Settings:     settings,
	})
}

// Override returns the settings stored for a student.
func (r *Remote) Override(ctx context.Context, assignmentID, userID string) (extension.Settings, error) {
	rec, err := repository.NewSQLiteOverrideRepo(r.db).Get(ctx, assignmentID, userID)
	if err != nil {
		return extension.Settings{}, err
	}
	var s extension.Settings
	if err := json.Unmarshal(rec.Settings, &s); err != nil {
		return extension.Settings{}, fmt.Errorf("decoding override: %w", err)
	}
	return s, nil
}

// StartExport queues an export job identified by a random token.
func (r *Remote) StartExport(ctx context.Context, courseID, assignmentID string) (string, error) {
	id := uuid.NewString()
	err := r.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := r.checkAssignment(ctx, tx, courseID, assignmentID); err != nil {
			return err
		}
		return repository.NewSQLiteExportRepo(tx).Create(ctx, &repository.ExportJob{
			ID:           id,
			AssignmentID: assignmentID,
			Required:     r.exportPolls,
		})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Remote) ExportStatus(ctx context.Context, _, fileID string) (mirror.ExportStatus, error) {
	j, err := repository.NewSQLiteExportRepo(r.db).Poll(ctx, fileID)
	if err != nil {
		return mirror.ExportStatus{}, err
	}
	if j.Polls >= j.Required {
		return mirror.ExportStatus{Status: "completed", Progress: 1}, nil
	}
	return mirror.ExportStatus{Status: "processing", Progress: float64(j.Polls) / float64(j.Required)}, nil
}

var _ mirror.Transport = (*Remote)(nil)
