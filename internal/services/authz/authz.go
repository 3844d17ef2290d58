// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package authz decides which operations a role may perform.
package authz

import (
	"errors"

	"github.com/paperdeck/wallpaper-admin/internal/models"
)

// ErrPermissionDenied is returned when a role may not perform an operation.
// It is a distinct outcome from a missing entity.
var ErrPermissionDenied = errors.New("permission denied")

// Operation is a guarded mutation of the catalog or the user directory.
type Operation string

const (
	OpEditCategory    Operation = "edit-category"
	OpDeleteCategory  Operation = "delete-category"
	OpDeleteWallpaper Operation = "delete-wallpaper"
	OpManageUsers     Operation = "manage-users"
	OpEditUser        Operation = "edit-user"
	OpDeleteUser      Operation = "delete-user"
)

// Authorize reports whether the role may perform the operation. Unknown
// roles and unknown operations are denied.
func Authorize(role models.Role, op Operation) error {
	allowed := false
	switch op {
	case OpEditCategory:
		allowed = role.CanEdit()
	case OpDeleteCategory, OpDeleteWallpaper:
		allowed = role.CanDelete()
	case OpManageUsers:
		allowed = role == models.RoleSuperuser
	case OpEditUser, OpDeleteUser:
		allowed = role == models.RoleSuperuser || role == models.RoleAdmin
	}

	if !allowed {
		return ErrPermissionDenied
	}
	return nil
}

// AuthorizeUserDeletion applies the deletion rules layered on top of the
// delete-user operation: nobody deletes their own account, and only a
// superuser may delete another superuser.
func AuthorizeUserDeletion(actor, target *models.User) error {
	if err := Authorize(actor.Role, OpDeleteUser); err != nil {
		return err
	}
	if actor.ID == target.ID {
		return ErrPermissionDenied
	}
	if target.IsSuperuser() && !actor.IsSuperuser() {
		return ErrPermissionDenied
	}
	return nil
}
