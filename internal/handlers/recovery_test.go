// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/services/session"
	"github.com/paperdeck/wallpaper-admin/internal/testutil"
)

// issuedCode extracts the pending code from the session bag, standing in for
// reading the email.
func issuedCode(t *testing.T, sessions *session.Manager, sid string) string {
	t.Helper()
	encoded, ok := sessions.Get(sid, "recovery_otp")
	require.True(t, ok)

	var record models.OTP
	require.NoError(t, json.Unmarshal([]byte(encoded), &record))
	return record.Code
}

// TestPasswordRecoveryFlow walks the whole reset protocol through the HTTP
// handlers: request a code, fail once with a wrong code, verify, set a new
// password, then log in with it.
func TestPasswordRecoveryFlow(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "root", models.RoleSuperuser)

	const sid = "sid-recovery"

	// Step 1: request a code.
	c, rec := f.request("POST", "/forgot-password", `{"email":"root@example.com"}`, sid, nil)
	require.NoError(t, f.h.ForgotPassword(c))
	require.Equal(t, 200, rec.Code)
	require.Equal(t, []string{"root@example.com"}, f.sender.sent)

	// Step 2: a wrong code is rejected and the flow stays open.
	c, rec = f.request("POST", "/verify-otp", `{"code":"000000"}`, sid, nil)
	require.NoError(t, f.h.VerifyOTP(c))
	require.Equal(t, 400, rec.Code)

	code := issuedCode(t, f.sessions, sid)
	c, rec = f.request("POST", "/verify-otp", `{"code":"`+code+`"}`, sid, nil)
	require.NoError(t, f.h.VerifyOTP(c))
	require.Equal(t, 200, rec.Code)

	// The code is consumed; replaying it is a protocol violation.
	c, rec = f.request("POST", "/verify-otp", `{"code":"`+code+`"}`, sid, nil)
	require.NoError(t, f.h.VerifyOTP(c))
	require.Equal(t, 409, rec.Code)

	// Step 3: set the new password.
	c, rec = f.request("POST", "/reset-password", `{"password":"newpass123"}`, sid, nil)
	require.NoError(t, f.h.ResetPassword(c))
	require.Equal(t, 200, rec.Code)

	// The old password no longer works, the new one does.
	_, err := f.auth.Login(context.Background(), "root", "test-password-123")
	assert.Error(t, err)
	user, err := f.auth.Login(context.Background(), "root", "newpass123")
	require.NoError(t, err)
	assert.Equal(t, "root", user.Username)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request("POST", "/forgot-password", `{"email":"ghost@example.com"}`, "sid-1", nil)
	require.NoError(t, f.h.ForgotPassword(c))

	assert.Equal(t, 404, rec.Code)
	assert.Empty(t, f.sender.sent)
}

func TestForgotPasswordNonSuperuser(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "admin", models.RoleAdmin)

	// The response is indistinguishable from an unknown address.
	c, rec := f.request("POST", "/forgot-password", `{"email":"admin@example.com"}`, "sid-1", nil)
	require.NoError(t, f.h.ForgotPassword(c))

	assert.Equal(t, 404, rec.Code)
	assert.Empty(t, f.sender.sent)
}

func TestVerifyOTPWithoutRequest(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request("POST", "/verify-otp", `{"code":"123456"}`, "sid-1", nil)
	require.NoError(t, f.h.VerifyOTP(c))

	assert.Equal(t, 409, rec.Code)
}

func TestResetPasswordWithoutVerify(t *testing.T) {
	f := newFixture(t)
	testutil.NewTestUser(t, f.repo, "root", models.RoleSuperuser)

	c, _ := f.request("POST", "/forgot-password", `{"email":"root@example.com"}`, "sid-1", nil)
	require.NoError(t, f.h.ForgotPassword(c))

	c, rec := f.request("POST", "/reset-password", `{"password":"newpass123"}`, "sid-1", nil)
	require.NoError(t, f.h.ResetPassword(c))

	assert.Equal(t, 409, rec.Code)
}

func TestForgotPasswordValidation(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request("POST", "/forgot-password", `{}`, "sid-1", nil)
	require.NoError(t, f.h.ForgotPassword(c))

	assert.Equal(t, 400, rec.Code)
}
