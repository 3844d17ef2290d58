// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/i18n"
	"github.com/paperdeck/wallpaper-admin/internal/models"
)

// UserContextKey is the echo context key holding the authenticated user.
const UserContextKey = "current_user"

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c echo.Context) *models.User {
	if user, ok := c.Get(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// message responds with a localized message and optional extra fields.
func message(c echo.Context, status int, messageID string, extra map[string]any) error {
	payload := map[string]any{
		"message": i18n.T(c.Request().Context(), messageID),
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.JSON(status, payload)
}

// messageData responds with a localized message rendered with template data.
func messageData(c echo.Context, status int, messageID string, data map[string]any, extra map[string]any) error {
	payload := map[string]any{
		"message": i18n.TData(c.Request().Context(), messageID, data),
	}
	for k, v := range extra {
		payload[k] = v
	}
	return c.JSON(status, payload)
}

// ok responds 200 with a localized message.
func ok(c echo.Context, messageID string) error {
	return message(c, http.StatusOK, messageID, nil)
}
