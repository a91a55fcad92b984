package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is a course membership role. The numeric value is the remote role code.
type Role int

const (
	RoleStudent    Role = 0
	RoleInstructor Role = 1
	RoleTA         Role = 2
	RoleReader     Role = 3
)

var roleNames = map[Role]string{
	RoleStudent:    "Student",
	RoleInstructor: "Instructor",
	RoleTA:         "TA",
	RoleReader:     "Reader",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Code returns the role as the remote form value.
func (r Role) Code() string {
	return strconv.Itoa(int(r))
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole accepts either a role name (case-insensitive) or a numeric role code.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		r := Role(n)
		if !r.Valid() {
			return 0, fmt.Errorf("unknown role code %d", n)
		}
		return r, nil
	}
	for r, name := range roleNames {
		if strings.EqualFold(name, s) {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q (expected student|instructor|ta|reader)", s)
}

// SubmissionType is chosen when an assignment is created.
type SubmissionType string

const (
	SubmissionImage SubmissionType = "image"
	SubmissionPDF   SubmissionType = "pdf"
)

// QuestionType is the remote outline node type.
type QuestionType string

const (
	QuestionFreeResponse QuestionType = "FreeResponseQuestion"
	QuestionGroup        QuestionType = "QuestionGroup"
)

// ValidQuestionTypes is the canonical set of accepted outline node types.
var ValidQuestionTypes = map[QuestionType]bool{
	QuestionFreeResponse: true,
	QuestionGroup:        true,
}
