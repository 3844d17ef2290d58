// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/catalog"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/auth"
	"github.com/paperdeck/wallpaper-admin/internal/services/authz"
	"github.com/paperdeck/wallpaper-admin/internal/services/email"
	"github.com/paperdeck/wallpaper-admin/internal/services/otp"
	"github.com/paperdeck/wallpaper-admin/internal/services/recovery"
)

// httpError converts a service error into a JSON response. Nothing escapes
// the handler boundary as an unhandled fault.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, authz.ErrPermissionDenied):
		return message(c, http.StatusForbidden, "permission_denied", nil)
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, catalog.ErrCategoryNotFound):
		return message(c, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, catalog.ErrUnknownCategory):
		return message(c, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, recovery.ErrUserNotFound):
		// Deliberately generic so the flow does not reveal which emails exist.
		return message(c, http.StatusNotFound, "no_such_account", nil)
	case errors.Is(err, recovery.ErrWrongStep):
		return message(c, http.StatusConflict, "recovery_wrong_step", nil)
	case errors.Is(err, otp.ErrInvalidOTP):
		return message(c, http.StatusBadRequest, "invalid_otp", nil)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return message(c, http.StatusUnauthorized, "login_failed", nil)
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrInvalidRole):
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	case errors.Is(err, email.ErrDeliveryFailed):
		return message(c, http.StatusBadGateway, "email_delivery_failed", nil)
	case errors.Is(err, catalog.ErrUnavailable):
		return message(c, http.StatusBadGateway, "store_unavailable", nil)
	}

	slog.Error("unhandled_error", "error", err, "path", c.Path())
	return c.JSON(http.StatusInternalServerError, map[string]string{
		"message": http.StatusText(http.StatusInternalServerError),
	})
}
