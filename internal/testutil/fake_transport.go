package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/extension"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/outline"
)

// ErrInjected is the default error returned for operations listed in
// FakeTransport.Fail.
var ErrInjected = errors.New("injected transport failure")

// FakeTransport is an in-memory remote service. Creates assign numeric ids
// but, like the real service, do not report them to the caller. Every call is
// counted by operation name.
type FakeTransport struct {
	mu sync.Mutex

	Courses     []domain.CourseRow
	Roster      map[string][]domain.RosterRow     // by course id
	Assignments map[string][]domain.AssignmentRow // by course id
	Outlines    map[string][]outline.NodeDoc      // by assignment id
	Students    map[string][]mirror.ExtensionStudent
	Overrides   map[string][]extension.Payload // by assignment id
	Published   map[string]bool
	Forms       map[string][]mirror.Form // by operation

	// ExportPolls is the number of status polls before an export completes.
	// Negative means never.
	ExportPolls int

	// Fail maps operation names to the error they return.
	Fail map[string]error

	calls  map[string]int
	nextID int
	polls  map[string]int
}

// NewFakeTransport returns an empty fake whose ids start at 1000.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{
		Roster:      map[string][]domain.RosterRow{},
		Assignments: map[string][]domain.AssignmentRow{},
		Outlines:    map[string][]outline.NodeDoc{},
		Students:    map[string][]mirror.ExtensionStudent{},
		Overrides:   map[string][]extension.Payload{},
		Published:   map[string]bool{},
		Forms:       map[string][]mirror.Form{},
		Fail:        map[string]error{},
		calls:       map[string]int{},
		polls:       map[string]int{},
		nextID:      1000,
	}
}

// Calls returns how many times op was invoked.
func (f *FakeTransport) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// ResetCalls clears every call counter.
func (f *FakeTransport) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = map[string]int{}
}

func (f *FakeTransport) enter(op string) error {
	f.calls[op]++
	if err, ok := f.Fail[op]; ok {
		if err == nil {
			return ErrInjected
		}
		return err
	}
	return nil
}

func (f *FakeTransport) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *FakeTransport) ListCourses(context.Context) ([]domain.CourseRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("list_courses"); err != nil {
		return nil, err
	}
	return append([]domain.CourseRow(nil), f.Courses...), nil
}

func (f *FakeTransport) CreateCourse(_ context.Context, form mirror.Form) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("create_course"); err != nil {
		return "", err
	}
	f.Forms["create_course"] = append(f.Forms["create_course"], form)
	id := f.newID()
	f.Courses = append(f.Courses, domain.CourseRow{ID: id, Name: form["course[name]"], Nickname: form["course[shortname]"], Instructor: true})
	return id, nil
}

func (f *FakeTransport) DeleteCourse(_ context.Context, courseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete_course"); err != nil {
		return err
	}
	for i, c := range f.Courses {
		if c.ID == courseID {
			f.Courses = append(f.Courses[:i], f.Courses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("course %s does not exist", courseID)
}

func (f *FakeTransport) FetchRoster(_ context.Context, courseID string) ([]domain.RosterRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("fetch_roster"); err != nil {
		return nil, err
	}
	return append([]domain.RosterRow(nil), f.Roster[courseID]...), nil
}

func (f *FakeTransport) CreateMembership(_ context.Context, courseID string, form mirror.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("create_membership"); err != nil {
		return err
	}
	f.Forms["create_membership"] = append(f.Forms["create_membership"], form)
	role, err := strconv.Atoi(form["course_membership[role]"])
	if err != nil {
		return fmt.Errorf("bad role %q", form["course_membership[role]"])
	}
	row := domain.RosterRow{
		DataID:   f.newID(),
		FullName: form["user[name]"],
		Email:    form["user[email]"],
		RoleCode: role,
	}
	if sid := form["user[sid]"]; sid != "" {
		row.SID = &sid
	}
	f.Roster[courseID] = append(f.Roster[courseID], row)
	return nil
}

func (f *FakeTransport) DeleteMembership(_ context.Context, courseID, membershipID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete_membership"); err != nil {
		return err
	}
	rows := f.Roster[courseID]
	for i, r := range rows {
		if r.DataID == membershipID {
			f.Roster[courseID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("membership %s does not exist", membershipID)
}

func (f *FakeTransport) UpdateMembershipRole(_ context.Context, courseID, membershipID string, form mirror.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("update_membership_role"); err != nil {
		return err
	}
	role, err := strconv.Atoi(form["course_membership[role]"])
	if err != nil {
		return fmt.Errorf("bad role %q", form["course_membership[role]"])
	}
	for i, r := range f.Roster[courseID] {
		if r.DataID == membershipID {
			f.Roster[courseID][i].RoleCode = role
			return nil
		}
	}
	return fmt.Errorf("membership %s does not exist", membershipID)
}

func (f *FakeTransport) FetchAssignments(_ context.Context, courseID string) ([]domain.AssignmentRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("fetch_assignments"); err != nil {
		return nil, err
	}
	return append([]domain.AssignmentRow(nil), f.Assignments[courseID]...), nil
}

func (f *FakeTransport) CreateAssignment(_ context.Context, courseID string, form mirror.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("create_assignment"); err != nil {
		return err
	}
	f.Forms["create_assignment"] = append(f.Forms["create_assignment"], form)
	f.Assignments[courseID] = append(f.Assignments[courseID], domain.AssignmentRow{
		ID:    f.newID(),
		Title: form["assignment[title]"],
	})
	return nil
}

func (f *FakeTransport) DeleteAssignment(_ context.Context, courseID, assignmentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("delete_assignment"); err != nil {
		return err
	}
	rows := f.Assignments[courseID]
	for i, r := range rows {
		if r.ID == assignmentID {
			f.Assignments[courseID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("assignment %s does not exist", assignmentID)
}

func (f *FakeTransport) UpdateAssignment(_ context.Context, _, assignmentID string, form mirror.Form) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("update_assignment"); err != nil {
		return err
	}
	if v, ok := form["assignment[published]"]; ok {
		f.Published[assignmentID] = v == "true"
	}
	return nil
}

func (f *FakeTransport) FetchOutline(_ context.Context, _, assignmentID string) ([]outline.NodeDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("fetch_outline"); err != nil {
		return nil, err
	}
	return append([]outline.NodeDoc(nil), f.Outlines[assignmentID]...), nil
}

// ReplaceOutline stores the patch as the new outline, assigning ids to nodes
// without one and setting parent ids from the structure.
func (f *FakeTransport) ReplaceOutline(_ context.Context, _, assignmentID string, patch outline.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("replace_outline"); err != nil {
		return err
	}
	f.Outlines[assignmentID] = f.assignIDs(patch.QuestionData, nil)
	return nil
}

func (f *FakeTransport) assignIDs(docs []outline.NodeDoc, parent *string) []outline.NodeDoc {
	out := make([]outline.NodeDoc, len(docs))
	for i, d := range docs {
		if d.ID == nil {
			id := f.newID()
			d.ID = &id
		}
		d.ParentID = parent
		d.Type = string(domain.QuestionFreeResponse)
		if len(d.Children) > 0 {
			d.Type = string(domain.QuestionGroup)
		}
		d.Children = f.assignIDs(d.Children, d.ID)
		out[i] = d
	}
	return out
}

func (f *FakeTransport) FetchExtensionStudents(_ context.Context, _, assignmentID string) ([]mirror.ExtensionStudent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("fetch_extension_students"); err != nil {
		return nil, err
	}
	return append([]mirror.ExtensionStudent(nil), f.Students[assignmentID]...), nil
}

func (f *FakeTransport) ApplyOverride(_ context.Context, _, assignmentID string, payload extension.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("apply_override"); err != nil {
		return err
	}
	f.Overrides[assignmentID] = append(f.Overrides[assignmentID], payload)
	return nil
}

func (f *FakeTransport) StartExport(_ context.Context, _, assignmentID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("start_export"); err != nil {
		return "", err
	}
	id := "export-" + assignmentID
	f.polls[id] = 0
	return id, nil
}

func (f *FakeTransport) ExportStatus(_ context.Context, _, fileID string) (mirror.ExportStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.enter("export_status"); err != nil {
		return mirror.ExportStatus{}, err
	}
	f.polls[fileID]++
	n := f.polls[fileID]
	if f.ExportPolls >= 0 && n >= f.ExportPolls {
		return mirror.ExportStatus{Status: "completed", Progress: 1}, nil
	}
	progress := 0.0
	if f.ExportPolls > 0 {
		progress = float64(n) / float64(f.ExportPolls)
	}
	return mirror.ExportStatus{Status: "processing", Progress: progress}, nil
}

var _ mirror.Transport = (*FakeTransport)(nil)
