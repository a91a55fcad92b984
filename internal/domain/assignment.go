package domain

import (
	"fmt"
	"time"
)

// Assignment is the mirrored state of one remote assignment.
type Assignment struct {
	ID            string
	Title         string
	Points        float64
	Submissions   int
	PercentGraded float64
	RegradesOn    bool
	ReleaseDate   *time.Time
	DueDate       *time.Time
	HardDueDate   *time.Time
	TimeLimit     *float64 // minutes; nil means no limit
}

// EffectiveHardDue returns the hard due date, falling back to the due date.
func (a *Assignment) EffectiveHardDue() *time.Time {
	if a.HardDueDate != nil {
		return a.HardDueDate
	}
	return a.DueDate
}

// Format returns a short human readable description.
func (a *Assignment) Format() string {
	return fmt.Sprintf("Name: %s\nID: %s", a.Title, a.ID)
}

// AssignmentRow is one parsed row of the remote assignments table.
type AssignmentRow struct {
	ID            string  `validate:"required,numeric"`
	Title         string  `validate:"required"`
	TotalPoints   float64 `validate:"gte=0"`
	Submissions   int     `validate:"gte=0"`
	GradingPct    float64 `validate:"gte=0,lte=100"`
	RegradesOn    bool
	ReleaseDate   *time.Time
	DueDate       *time.Time
	HardDueDate   *time.Time
	TimeLimitMins *float64 `validate:"omitempty,gt=0"`
}

// Validate checks the row against its field constraints.
func (r AssignmentRow) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("assignment row %q: %w", r.ID, err)
	}
	if r.ReleaseDate != nil && r.DueDate != nil && r.DueDate.Before(*r.ReleaseDate) {
		return fmt.Errorf("assignment row %q: due date before release date", r.ID)
	}
	return nil
}

// ToAssignment converts a validated row into an Assignment.
func (r AssignmentRow) ToAssignment() Assignment {
	return Assignment{
		ID:            r.ID,
		Title:         r.Title,
		Points:        r.TotalPoints,
		Submissions:   r.Submissions,
		PercentGraded: r.GradingPct,
		RegradesOn:    r.RegradesOn,
		ReleaseDate:   r.ReleaseDate,
		DueDate:       r.DueDate,
		HardDueDate:   r.HardDueDate,
		TimeLimit:     r.TimeLimitMins,
	}
}
