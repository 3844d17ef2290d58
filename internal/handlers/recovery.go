// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/services/session"
)

// ForgotPasswordRequest is the request body for starting a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" form:"email"`
}

// VerifyOTPRequest is the request body for submitting the one-time code.
type VerifyOTPRequest struct {
	Code string `json:"code" form:"code"`
}

// ResetPasswordRequest is the request body for setting the new password.
type ResetPasswordRequest struct {
	Password string `json:"password" form:"password"`
}

// ForgotPassword starts a reset for a superuser account and emails a
// one-time code.
func (h *Handlers) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil || req.Email == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.recovery.Request(c.Request().Context(), session.SID(c), req.Email); err != nil {
		return httpError(c, err)
	}
	return ok(c, "otp_sent")
}

// VerifyOTP checks the submitted code against the pending reset.
func (h *Handlers) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.recovery.Verify(c.Request().Context(), session.SID(c), req.Code); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "verified"})
}

// ResetPassword completes the flow with the new password.
func (h *Handlers) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil || req.Password == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.recovery.Reset(c.Request().Context(), session.SID(c), req.Password); err != nil {
		return httpError(c, err)
	}
	return ok(c, "password_reset_success")
}
