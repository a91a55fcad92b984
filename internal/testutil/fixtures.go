package testutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/mirror"
	"github.com/alexanderramin/scopesync/internal/outline"
)

var testIDCounter atomic.Int64

func nextTestID() string {
	return strconv.FormatInt(500+testIDCounter.Add(1), 10)
}

// Fixture ids used by NewSeededTransport.
const (
	TestEmail        = "instructor@example.edu"
	TestCourseID     = "100"
	TestAssignmentID = "200"
)

var (
	TestRelease = time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	TestDue     = time.Date(2025, 9, 8, 23, 59, 0, 0, time.UTC)
)

// NewTestRosterRow returns a valid roster row with a fresh membership id.
func NewTestRosterRow(name, email string, role domain.Role) domain.RosterRow {
	return domain.RosterRow{
		DataID:   nextTestID(),
		FullName: name,
		Email:    email,
		RoleCode: int(role),
	}
}

// Assignment row options
type AssignmentOption func(*domain.AssignmentRow)

func WithTimeLimit(minutes float64) AssignmentOption {
	return func(r *domain.AssignmentRow) {
		r.TimeLimitMins = &minutes
	}
}

func WithHardDue(t time.Time) AssignmentOption {
	return func(r *domain.AssignmentRow) {
		r.HardDueDate = &t
	}
}

func WithAssignmentID(id string) AssignmentOption {
	return func(r *domain.AssignmentRow) {
		r.ID = id
	}
}

// NewTestAssignmentRow returns a valid assignment row released at TestRelease
// and due at TestDue.
func NewTestAssignmentRow(title string, opts ...AssignmentOption) domain.AssignmentRow {
	release, due := TestRelease, TestDue
	r := domain.AssignmentRow{
		ID:          nextTestID(),
		Title:       title,
		TotalPoints: 10,
		ReleaseDate: &release,
		DueDate:     &due,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// NewTestOutline returns a two-level outline: "Test Question 1" with children
// "Test Question 1.1" and "Test Question 1.2", then top-level questions
// "Test Question 2" through "Test Question n". Ids start at 3000.
func NewTestOutline(n int) []outline.NodeDoc {
	next := 3000
	id := func() *string {
		next++
		s := strconv.Itoa(next)
		return &s
	}
	leaf := func(title string, parent *string) outline.NodeDoc {
		return outline.NodeDoc{
			ID: id(), Title: title, Weight: 1, Type: string(domain.QuestionFreeResponse),
			ParentID: parent, Content: json.RawMessage(`[]`), Crop: outline.DefaultCrop(),
		}
	}
	group := outline.NodeDoc{
		ID: id(), Title: "Test Question 1", Weight: 2, Type: string(domain.QuestionGroup),
		Content: json.RawMessage(`[]`), Crop: outline.DefaultCrop(),
	}
	group.Children = []outline.NodeDoc{
		leaf("Test Question 1.1", group.ID),
		leaf("Test Question 1.2", group.ID),
	}
	docs := []outline.NodeDoc{group}
	for i := 2; i <= n; i++ {
		docs = append(docs, leaf(fmt.Sprintf("Test Question %d", i), nil))
	}
	return docs
}

// NewSeededTransport returns a fake with one instructor course holding three
// people (two sharing a name), one assignment with an outline, and an
// extension student list.
func NewSeededTransport() *FakeTransport {
	ft := NewFakeTransport()
	ft.Courses = []domain.CourseRow{
		{ID: TestCourseID, Name: "Intro to Testing", Nickname: "TEST 101", Term: "Fall 2025", Instructor: true},
		{ID: "101", Name: "Audited Course", Nickname: "AUD 1", Term: "Fall 2025"},
	}
	ft.Roster[TestCourseID] = []domain.RosterRow{
		NewTestRosterRow("Ada Lovelace", "ada@example.edu", domain.RoleStudent),
		NewTestRosterRow("Sam Lee", "sam.lee@example.edu", domain.RoleStudent),
		NewTestRosterRow("Sam Lee", "slee2@example.edu", domain.RoleTA),
	}
	ft.Assignments[TestCourseID] = []domain.AssignmentRow{
		NewTestAssignmentRow("Homework 1", WithAssignmentID(TestAssignmentID), WithTimeLimit(60)),
	}
	ft.Outlines[TestAssignmentID] = NewTestOutline(3)
	ft.Students[TestAssignmentID] = []mirror.ExtensionStudent{
		{ID: "9001", Email: "ada@example.edu"},
		{ID: "9002", Email: "sam.lee@example.edu"},
	}
	return ft
}
