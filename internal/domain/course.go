package domain

import "fmt"

// CourseRow is one course entry of the account page.
type CourseRow struct {
	ID         string `validate:"required"`
	Name       string `validate:"required"`
	Nickname   string
	Term       string
	Instructor bool
}

// Validate checks the row against its field constraints.
func (r CourseRow) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("course row %q: %w", r.ID, err)
	}
	return nil
}
