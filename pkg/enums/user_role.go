package enums

import (
	"fmt"
	"slices"
)

// UserRole is the coarse capability attached to an account.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

var userRoleValues = []UserRole{
	UserRoleUser,
	UserRoleAdmin,
}

// String implements fmt.Stringer.
func (v UserRole) String() string {
	return string(v)
}

// IsValid reports whether the value is a known UserRole.
func (v UserRole) IsValid() bool {
	return slices.Contains(userRoleValues, v)
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	candidate := UserRole(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid user role %q", value)
	}
	return candidate, nil
}
