package domain

import "fmt"

// Role is the closed set of identity roles. There is no hierarchy between
// roles: an ADMIN is not implicitly a CREATOR.
type Role string

// Role constants define the allowed identity roles.
const (
	RoleAdmin   Role = "ADMIN"
	RoleCreator Role = "CREATOR"
	RoleBuyer   Role = "BUYER"
)

// DefaultRole is assigned to every newly registered user.
const DefaultRole = RoleCreator

// ValidRoles returns the set of valid roles.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleCreator, RoleBuyer}
}

// IsValid reports whether r is one of the enumerated roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleCreator, RoleBuyer:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a stored role string into a Role. Matching is exact.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
