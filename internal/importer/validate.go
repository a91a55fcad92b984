package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/scopesync/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ValidateSeedSchema checks the seed for errors before it is applied.
// Returns a slice of all validation errors found.
func ValidateSeedSchema(schema *SeedSchema) []error {
	var errs []error

	if err := domain.ValidateStruct(schema); err != nil {
		errs = append(errs, fieldErrors(err)...)
	}

	courseIDs := make(map[string]bool)
	for i, c := range schema.Courses {
		prefix := fmt.Sprintf("courses[%d]", i)
		if c.ID != "" {
			if courseIDs[c.ID] {
				errs = append(errs, fmt.Errorf("%s.id: duplicate course id %q", prefix, c.ID))
			}
			courseIDs[c.ID] = true
		}
		errs = append(errs, validatePeople(prefix, c.People)...)
		for j, a := range c.Assignments {
			errs = append(errs, validateAssignment(fmt.Sprintf("%s.assignments[%d]", prefix, j), a)...)
		}
	}
	return errs
}

func fieldErrors(err error) []error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "SeedSchema.")
		out = append(out, fmt.Errorf("%s: failed %q check", field, fe.Tag()))
	}
	return out
}

func validatePeople(prefix string, people []PersonImport) []error {
	var errs []error
	emails := make(map[string]bool)
	for i, p := range people {
		key := strings.ToLower(p.Email)
		if key != "" && emails[key] {
			errs = append(errs, fmt.Errorf("%s.people[%d].email: duplicate email %q", prefix, i, p.Email))
		}
		emails[key] = true
		if p.Role != "" {
			if _, err := domain.ParseRole(p.Role); err != nil {
				errs = append(errs, fmt.Errorf("%s.people[%d].role: %w", prefix, i, err))
			}
		}
	}
	return errs
}

func validateAssignment(prefix string, a AssignmentImport) []error {
	var errs []error
	parse := func(field, v string) *time.Time {
		if v == "" {
			return nil
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.%s: invalid timestamp %q (expected RFC 3339)", prefix, field, v))
			return nil
		}
		return &t
	}
	release := parse("release", a.Release)
	due := parse("due", a.Due)
	hard := parse("hard_due", a.HardDue)

	if release != nil && due != nil && due.Before(*release) {
		errs = append(errs, fmt.Errorf("%s.due %q is before release %q", prefix, a.Due, a.Release))
	}
	if due != nil && hard != nil && hard.Before(*due) {
		errs = append(errs, fmt.Errorf("%s.hard_due %q is before due %q", prefix, a.HardDue, a.Due))
	}
	return errs
}

func parseOptionalTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil
	}
	return &t
}
