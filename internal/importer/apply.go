package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/scopesync/internal/db"
	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/alexanderramin/scopesync/internal/repository"
)

// SeedResult summarizes an applied seed.
type SeedResult struct {
	Account         string
	CourseIDs       []string
	PersonCount     int
	AssignmentCount int
	QuestionCount   int
}

// Apply validates the schema and inserts everything in one transaction.
// Nothing is written when any part fails.
func Apply(ctx context.Context, uow db.UnitOfWork, schema *SeedSchema) (*SeedResult, error) {
	if errs := ValidateSeedSchema(schema); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	var res *SeedResult
	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		s := &seeder{
			seq:         repository.NewSQLiteSequenceRepo(tx),
			courses:     repository.NewSQLiteCourseRepo(tx),
			members:     repository.NewSQLiteMembershipRepo(tx),
			assignments: repository.NewSQLiteAssignmentRepo(tx),
			questions:   repository.NewSQLiteQuestionRepo(tx),
			result:      &SeedResult{Account: schema.Account},
		}
		for _, c := range schema.Courses {
			if err := s.course(ctx, c); err != nil {
				return err
			}
		}
		res = s.result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

type seeder struct {
	seq         repository.SequenceRepo
	courses     repository.CourseRepo
	members     repository.MembershipRepo
	assignments repository.AssignmentRepo
	questions   repository.QuestionRepo
	result      *SeedResult
}

func (s *seeder) course(ctx context.Context, c CourseImport) error {
	id := c.ID
	if id == "" {
		var err error
		if id, err = s.seq.Next(ctx); err != nil {
			return err
		}
	}
	rec := &repository.CourseRecord{
		ID:          id,
		Name:        c.Name,
		Nickname:    c.Nickname,
		Description: c.Description,
		Term:        c.Term,
		Instructor:  c.IsInstructor(),
	}
	if err := s.courses.Create(ctx, rec); err != nil {
		return fmt.Errorf("creating course %q: %w", c.Name, err)
	}
	s.result.CourseIDs = append(s.result.CourseIDs, id)

	for _, p := range c.People {
		if err := s.person(ctx, id, p); err != nil {
			return fmt.Errorf("creating member %q: %w", p.Email, err)
		}
	}
	for _, a := range c.Assignments {
		if err := s.assignment(ctx, id, a); err != nil {
			return fmt.Errorf("creating assignment %q: %w", a.Title, err)
		}
	}
	return nil
}

func (s *seeder) person(ctx context.Context, courseID string, p PersonImport) error {
	role, err := domain.ParseRole(domain.CoalesceStr(p.Role, domain.RoleStudent.String()))
	if err != nil {
		return err
	}
	m := &repository.Membership{
		CourseID: courseID,
		FullName: p.Name,
		Email:    strings.TrimSpace(p.Email),
		Role:     role,
	}
	if p.SID != "" {
		sid := p.SID
		m.SID = &sid
	}
	if m.ID, err = s.seq.Next(ctx); err != nil {
		return err
	}
	if m.UserID, err = s.seq.Next(ctx); err != nil {
		return err
	}
	if err := s.members.Create(ctx, m); err != nil {
		return err
	}
	s.result.PersonCount++
	return nil
}

func (s *seeder) assignment(ctx context.Context, courseID string, a AssignmentImport) error {
	id, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	rec := &repository.AssignmentRecord{
		ID:             id,
		CourseID:       courseID,
		Title:          a.Title,
		Points:         a.Points,
		ReleaseDate:    parseOptionalTime(a.Release),
		DueDate:        parseOptionalTime(a.Due),
		HardDueDate:    parseOptionalTime(a.HardDue),
		TimeLimit:      a.TimeLimit,
		SubmissionType: domain.SubmissionType(a.SubmissionType),
		Published:      a.Published,
	}
	if err := s.assignments.Create(ctx, rec); err != nil {
		return err
	}
	s.result.AssignmentCount++
	return s.outline(ctx, id, nil, a.Outline)
}

func (s *seeder) outline(ctx context.Context, assignmentID string, parent *string, nodes []QuestionImport) error {
	for i, q := range nodes {
		id, err := s.seq.Next(ctx)
		if err != nil {
			return err
		}
		qt := domain.QuestionFreeResponse
		if len(q.Children) > 0 {
			qt = domain.QuestionGroup
		}
		rec := &repository.QuestionRecord{
			ID:           id,
			AssignmentID: assignmentID,
			ParentID:     parent,
			Title:        q.Title,
			Weight:       q.Weight,
			Type:         qt,
			OrderIndex:   i,
		}
		if err := s.questions.Create(ctx, rec); err != nil {
			return err
		}
		s.result.QuestionCount++
		if err := s.outline(ctx, assignmentID, &id, q.Children); err != nil {
			return err
		}
	}
	return nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("seed validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
