// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

// Role is the access tier of a user account.
type Role string

const (
	RoleSuperuser Role = "superuser"
	RoleAdmin     Role = "admin"
	RoleEditor    Role = "editor"
)

// Roles lists all valid roles, highest tier first.
func Roles() []Role {
	return []Role{RoleSuperuser, RoleAdmin, RoleEditor}
}

// ParseRole returns the role matching s, or false for anything unknown.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSuperuser, RoleAdmin, RoleEditor:
		return Role(s), true
	}
	return "", false
}

// CanEdit reports whether the role may modify catalog content.
// Unknown roles carry no capabilities.
func (r Role) CanEdit() bool {
	switch r {
	case RoleSuperuser, RoleAdmin, RoleEditor:
		return true
	}
	return false
}

// CanDelete reports whether the role may delete catalog content.
func (r Role) CanDelete() bool {
	switch r {
	case RoleSuperuser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
