// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/services/session"
)

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login authenticates a user and binds it to the session.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	user, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return httpError(c, err)
	}

	sid := session.SID(c)
	h.sessions.Clear(sid) // drop any stale state from a previous login
	h.sessions.Set(sid, session.UserIDKey, strconv.FormatInt(user.ID, 10))

	return c.JSON(http.StatusOK, map[string]any{
		"user": user,
	})
}

// Logout drops the session.
func (h *Handlers) Logout(c echo.Context) error {
	h.sessions.Clear(session.SID(c))
	return ok(c, "logged_out")
}
