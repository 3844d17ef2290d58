// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/wallpaper-admin/internal/i18n"
	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/auth"
	"github.com/paperdeck/wallpaper-admin/internal/services/email"
	"github.com/paperdeck/wallpaper-admin/internal/services/otp"
	"github.com/paperdeck/wallpaper-admin/internal/services/recovery"
	"github.com/paperdeck/wallpaper-admin/internal/services/session"
	"github.com/paperdeck/wallpaper-admin/internal/testutil"
)

// fakeSender records sent messages and optionally fails.
type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

type fixture struct {
	svc      *recovery.Service
	repo     *repository.Repository
	auth     *auth.Service
	sender   *fakeSender
	sessions *session.Manager
	now      *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, i18n.Init())

	_, repo := testutil.NewTestDB(t)
	authSvc := auth.NewService(repo)
	sender := &fakeSender{}
	sessions := session.NewManager("session", []byte("0123456789abcdef0123456789abcdef"), time.Hour, false)

	now := time.Now()
	engine := otp.NewEngineWithClock(300*time.Second, func() time.Time { return now })

	return &fixture{
		svc:      recovery.NewService(repo, engine, sender, sessions, authSvc),
		repo:     repo,
		auth:     authSvc,
		sender:   sender,
		sessions: sessions,
		now:      &now,
	}
}

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

func createSuperuser(t *testing.T, f *fixture, emailAddr string) *models.User {
	t.Helper()
	user, err := f.auth.CreateUser(context.Background(), "boss", emailAddr, "old-password1", models.RoleSuperuser)
	require.NoError(t, err)
	return user
}

func TestRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))

	assert.Equal(t, recovery.StateAwaitingOTP, f.svc.State("sid"))
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "a@x.com", f.sender.sent[0].to)
	assert.Contains(t, f.sender.sent[0].body, issuedCode(t, f.sessions, "sid"))
}

func TestRequest_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Request(context.Background(), "sid", "nobody@x.com")

	assert.ErrorIs(t, err, recovery.ErrUserNotFound)
	assert.Equal(t, recovery.StateAwaitingEmail, f.svc.State("sid"))
	assert.Empty(t, f.sender.sent)
}

func TestRequest_NonSuperuserEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.CreateUser(ctx, "alice", "alice@x.com", "password-123", models.RoleAdmin)
	require.NoError(t, err)

	err = f.svc.Request(ctx, "sid", "alice@x.com")

	assert.ErrorIs(t, err, recovery.ErrUserNotFound)
	assert.Equal(t, recovery.StateAwaitingEmail, f.svc.State("sid"))
}

func TestRequest_DeliveryFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")
	f.sender.err = errors.New("smtp down")

	err := f.svc.Request(ctx, "sid", "a@x.com")

	assert.ErrorIs(t, err, email.ErrDeliveryFailed)
	assert.Equal(t, recovery.StateAwaitingEmail, f.svc.State("sid"))
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))
	code := issuedCode(t, f.sessions, "sid")

	require.NoError(t, f.svc.Verify(ctx, "sid", code))

	assert.Equal(t, recovery.StateAwaitingNewPassword, f.svc.State("sid"))
}

func TestVerify_WrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))
	code := issuedCode(t, f.sessions, "sid")

	wrong := "000000"
	if code == wrong {
		wrong = "000001"
	}

	err := f.svc.Verify(ctx, "sid", wrong)

	assert.ErrorIs(t, err, otp.ErrInvalidOTP)
	assert.Equal(t, recovery.StateAwaitingOTP, f.svc.State("sid"))

	// Retries stay possible within the window.
	require.NoError(t, f.svc.Verify(ctx, "sid", code))
}

func TestVerify_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))
	code := issuedCode(t, f.sessions, "sid")

	*f.now = f.now.Add(301 * time.Second)

	err := f.svc.Verify(ctx, "sid", code)

	assert.ErrorIs(t, err, otp.ErrInvalidOTP)
	assert.Equal(t, recovery.StateAwaitingOTP, f.svc.State("sid"))
}

func TestVerify_SingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))
	code := issuedCode(t, f.sessions, "sid")

	require.NoError(t, f.svc.Verify(ctx, "sid", code))

	// The code was consumed at verification; replaying it is rejected.
	err := f.svc.Verify(ctx, "sid", code)
	assert.ErrorIs(t, err, recovery.ErrWrongStep)
}

func TestVerify_WithoutRequest(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Verify(context.Background(), "sid", "123456")

	assert.ErrorIs(t, err, recovery.ErrWrongStep)
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))
	code := issuedCode(t, f.sessions, "sid")
	require.NoError(t, f.svc.Verify(ctx, "sid", code))

	require.NoError(t, f.svc.Reset(ctx, "sid", "newpass123"))

	assert.Equal(t, recovery.StateCompleted, f.svc.State("sid"))

	// The new password works.
	_, err := f.auth.Login(ctx, "boss", "newpass123")
	assert.NoError(t, err)

	// The recovery data is gone from the session.
	_, ok := f.sessions.Get("sid", "recovery_otp")
	assert.False(t, ok)
	_, ok = f.sessions.Get("sid", "recovery_email")
	assert.False(t, ok)
}

func TestReset_UserDeletedMidFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))
	code := issuedCode(t, f.sessions, "sid")
	require.NoError(t, f.svc.Verify(ctx, "sid", code))

	require.NoError(t, f.repo.DeleteUser(ctx, user.ID))

	err := f.svc.Reset(ctx, "sid", "newpass123")

	assert.ErrorIs(t, err, recovery.ErrUserNotFound)
	assert.Equal(t, recovery.StateAwaitingNewPassword, f.svc.State("sid"))
}

func TestReset_WithoutVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid", "a@x.com"))

	err := f.svc.Reset(ctx, "sid", "newpass123")

	assert.ErrorIs(t, err, recovery.ErrWrongStep)
}

func TestFlows_IndependentSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSuperuser(t, f, "a@x.com")

	require.NoError(t, f.svc.Request(ctx, "sid-1", "a@x.com"))

	// A second session is still at the start.
	assert.Equal(t, recovery.StateAwaitingEmail, f.svc.State("sid-2"))
	err := f.svc.Verify(ctx, "sid-2", "123456")
	assert.ErrorIs(t, err, recovery.ErrWrongStep)
}
