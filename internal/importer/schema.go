// Package importer loads YAML seed fixtures into the sandbox remote.
package importer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/alexanderramin/scopesync/internal/domain"
	"gopkg.in/yaml.v3"
)

// SeedSchema is the top-level YAML structure of a sandbox seed file.
type SeedSchema struct {
	Account string         `yaml:"account" validate:"omitempty,email"`
	Courses []CourseImport `yaml:"courses" validate:"required,min=1,dive"`
}

// CourseImport defines one course. ID is optional; the sandbox allocates one
// when it is empty.
type CourseImport struct {
	ID          string             `yaml:"id" validate:"omitempty,numeric"`
	Name        string             `yaml:"name" validate:"required"`
	Nickname    string             `yaml:"nickname"`
	Description string             `yaml:"description"`
	Term        string             `yaml:"term"`
	Instructor  *bool              `yaml:"instructor"`
	People      []PersonImport     `yaml:"people" validate:"dive"`
	Assignments []AssignmentImport `yaml:"assignments" validate:"dive"`
}

// IsInstructor reports whether the seeded account teaches the course.
// Courses default to instructor courses.
func (c CourseImport) IsInstructor() bool {
	return domain.BoolFromPtrWithDefault(true, c.Instructor)
}

// PersonImport defines one course member. Role takes a role name or code and
// defaults to student.
type PersonImport struct {
	Name  string `yaml:"name" validate:"required"`
	Email string `yaml:"email" validate:"required,email"`
	SID   string `yaml:"sid"`
	Role  string `yaml:"role"`
}

// AssignmentImport defines one assignment. Dates are RFC 3339 timestamps.
type AssignmentImport struct {
	Title          string           `yaml:"title" validate:"required"`
	Points         float64          `yaml:"points" validate:"gte=0"`
	Release        string           `yaml:"release"`
	Due            string           `yaml:"due"`
	HardDue        string           `yaml:"hard_due"`
	TimeLimit      *float64         `yaml:"time_limit" validate:"omitempty,gt=0"`
	SubmissionType string           `yaml:"submission_type" validate:"omitempty,oneof=image pdf"`
	Published      bool             `yaml:"published"`
	Outline        []QuestionImport `yaml:"outline" validate:"dive"`
}

// QuestionImport defines one outline node and its children.
type QuestionImport struct {
	Title    string           `yaml:"title" validate:"required"`
	Weight   float64          `yaml:"weight" validate:"gte=0"`
	Children []QuestionImport `yaml:"children" validate:"dive"`
}

// LoadSeedSchema reads and parses a seed file. Unknown keys are rejected.
func LoadSeedSchema(path string) (*SeedSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedSchema(data)
}

// ParseSeedSchema parses seed YAML.
func ParseSeedSchema(data []byte) (*SeedSchema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var schema SeedSchema
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &schema, nil
}
