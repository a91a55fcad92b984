package domain

import (
	"fmt"
	"strings"
)

// Person is a course member of any role. Email is the unique id; full names
// may collide.
type Person struct {
	FullName string
	DataID   string // remote membership id, used in delete and role-change calls
	SID      string
	Email    string
	Role     Role // the only field updated in place
}

func (p *Person) Name() string     { return p.FullName }
func (p *Person) UniqueID() string { return p.Email }

func (p *Person) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nRole: %s", p.FullName, p.Email, p.Role)
	if p.SID != "" {
		fmt.Fprintf(&b, "\nSID: %s", p.SID)
	}
	return b.String()
}

// RosterRow is one parsed membership row as delivered by the page parser.
type RosterRow struct {
	DataID   string `validate:"required"`
	FullName string `validate:"required"`
	Email    string `validate:"required,email"`
	SID      *string
	RoleCode int `validate:"min=0,max=3"`
}

// Validate checks the row against its field constraints.
func (r RosterRow) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("roster row %q: %w", r.Email, err)
	}
	return nil
}

// ToPerson converts a validated row into a Person.
func (r RosterRow) ToPerson() *Person {
	p := &Person{
		FullName: r.FullName,
		DataID:   r.DataID,
		Email:    r.Email,
		Role:     Role(r.RoleCode),
	}
	if r.SID != nil {
		p.SID = *r.SID
	}
	return p
}
