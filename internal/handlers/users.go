// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/services/authz"
)

// UserRequest is the request body for creating or updating a user.
type UserRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
}

// ListUsers returns all accounts. Superuser only.
func (h *Handlers) ListUsers(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpManageUsers); err != nil {
		return httpError(c, err)
	}

	users, err := h.repo.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

// AddUser creates an account. Superuser only.
func (h *Handlers) AddUser(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpManageUsers); err != nil {
		return httpError(c, err)
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil || req.Username == "" || req.Password == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	user, err := h.auth.CreateUser(c.Request().Context(), req.Username, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		return httpError(c, err)
	}
	return message(c, http.StatusCreated, "user_created", map[string]any{"user": user})
}

// EditUser updates username, role and optionally the password of an account.
func (h *Handlers) EditUser(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpEditUser); err != nil {
		return httpError(c, err)
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	ctx := c.Request().Context()
	user, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		role, okRole := models.ParseRole(req.Role)
		if !okRole {
			return message(c, http.StatusBadRequest, "validation_failed", nil)
		}
		user.Role = role
	}

	if err := h.repo.UpdateUser(ctx, user); err != nil {
		return httpError(c, err)
	}

	// Only update password if provided.
	if req.Password != "" {
		if err := h.auth.SetPassword(ctx, user.ID, req.Password); err != nil {
			return httpError(c, err)
		}
	}

	return messageData(c, http.StatusOK, "user_updated",
		map[string]any{"Username": user.Username},
		map[string]any{"user": user})
}

// DeleteUser removes an account under the deletion policy: no self-deletion,
// and only superusers may delete other superusers.
func (h *Handlers) DeleteUser(c echo.Context) error {
	actor := CurrentUser(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	ctx := c.Request().Context()
	target, err := h.repo.GetUserByID(ctx, id)
	if err != nil {
		// The gate runs first so a denied actor cannot probe for ids.
		if authzErr := authz.Authorize(actor.Role, authz.OpDeleteUser); authzErr != nil {
			return httpError(c, authzErr)
		}
		return httpError(c, err)
	}

	if err := authz.AuthorizeUserDeletion(actor, target); err != nil {
		return httpError(c, err)
	}

	if err := h.repo.DeleteUser(ctx, target.ID); err != nil {
		return httpError(c, err)
	}

	return messageData(c, http.StatusOK, "user_deleted",
		map[string]any{"Username": target.Username}, nil)
}
