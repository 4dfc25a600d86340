// Package types provides type definitions for structured data shared across the placementhub client.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Role identifies the kind of signed-in user. The set is closed; role-based
// branching throughout the client switches on these values only.
type Role string

const (
	RoleStudent      Role = "student"
	RoleAlumni       Role = "alumni"
	RoleManagement   Role = "management"
	RoleEventManager Role = "event_manager"
)

// Roles lists every valid role in a stable order.
func Roles() []Role {
	return []Role{RoleStudent, RoleAlumni, RoleManagement, RoleEventManager}
}

// ParseRole converts a raw string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleAlumni, RoleManagement, RoleEventManager:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether the role is a member of the closed role set.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// DefaultDepartment is used when a signing-in user has no department on file.
const DefaultDepartment = "Computer Science"

// DefaultSkills is the placeholder skill list assigned at sign-in when the
// profile carries none.
var DefaultSkills = []string{"communication", "problem solving"}

// Identity is the signed-in user record. Exactly one identity is active at a
// time; it is the sole source of role-based branching.
type Identity struct {
	ID         string   `json:"id"`
	Email      string   `json:"email"`
	Role       Role     `json:"role"`
	Department string   `json:"department"`
	Skills     []string `json:"skills"`
}

// ApplyDefaults fills missing optional fields the way the portal does at
// sign-in: role falls back to student, department and skills to fixed
// placeholders.
func (id *Identity) ApplyDefaults() {
	if id.Role == "" {
		id.Role = RoleStudent
	}
	if id.Department == "" {
		id.Department = DefaultDepartment
	}
	if len(id.Skills) == 0 {
		id.Skills = append([]string(nil), DefaultSkills...)
	}
}

// LoginRequest represents the sign-in input.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Role != "" {
		if _, err := ParseRole(r.Role); err != nil {
			return err
		}
	}
	return nil
}
