// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package recovery implements the three-step password reset protocol:
// request a code by email, verify the code, set a new password. Progress is
// tracked in the caller's session bag, so two concurrent flows sharing one
// session race and the last issued code wins.
package recovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/paperdeck/wallpaper-admin/internal/i18n"
	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/email"
	"github.com/paperdeck/wallpaper-admin/internal/services/otp"
)

var (
	// ErrUserNotFound is returned when no privileged account matches. The
	// user-facing message stays generic so the flow does not leak which
	// emails exist.
	ErrUserNotFound = errors.New("no matching account")
	// ErrWrongStep is returned when a step is called out of order.
	ErrWrongStep = errors.New("recovery step out of order")
)

// State is the position of a session in the reset protocol.
type State string

const (
	StateAwaitingEmail       State = "awaiting_email"
	StateAwaitingOTP         State = "awaiting_otp"
	StateAwaitingNewPassword State = "awaiting_new_password"
	StateCompleted           State = "completed"
)

// Session bag keys.
const (
	keyState = "recovery_state"
	keyEmail = "recovery_email"
	keyOTP   = "recovery_otp"
)

// SessionStore is the per-session key-value bag the state machine writes to.
type SessionStore interface {
	Get(sid, key string) (string, bool)
	Set(sid, key, value string)
	Delete(sid, key string)
}

// PasswordSetter persists a new password for a user.
type PasswordSetter interface {
	SetPassword(ctx context.Context, userID int64, password string) error
}

// Service drives the password reset protocol.
type Service struct {
	repo      *repository.Repository
	engine    *otp.Engine
	sender    email.Sender
	sessions  SessionStore
	passwords PasswordSetter
}

// NewService creates a recovery service.
func NewService(repo *repository.Repository, engine *otp.Engine, sender email.Sender, sessions SessionStore, passwords PasswordSetter) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		sender:    sender,
		sessions:  sessions,
		passwords: passwords,
	}
}

// State returns the session's position in the protocol.
func (s *Service) State(sid string) State {
	if state, ok := s.sessions.Get(sid, keyState); ok {
		return State(state)
	}
	return StateAwaitingEmail
}

// Request starts a reset for the superuser account registered under the
// given email. On success the session advances to awaiting the code. A
// delivery failure aborts the transition.
func (s *Service) Request(ctx context.Context, sid, emailAddr string) error {
	user, err := s.repo.GetUserByEmail(ctx, emailAddr, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	record, err := s.engine.Issue(user.ID)
	if err != nil {
		return err
	}

	subject := i18n.T(ctx, "otp_email_subject")
	body := i18n.TData(ctx, "otp_email_body", map[string]any{"Code": record.Code})
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		slog.Warn("recovery_email_failed", "user_id", user.ID, "error", err)
		if errors.Is(err, email.ErrDeliveryFailed) {
			return err
		}
		return fmt.Errorf("%w: %w", email.ErrDeliveryFailed, err)
	}

	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding code record: %w", err)
	}
	s.sessions.Set(sid, keyOTP, string(encoded))
	s.sessions.Set(sid, keyEmail, emailAddr)
	s.sessions.Set(sid, keyState, string(StateAwaitingOTP))

	slog.Info("recovery_requested", "user_id", user.ID, "token", record.Token)
	return nil
}

// Verify checks the submitted code. A valid code is consumed immediately, so
// it cannot be replayed even within its lifetime. An invalid code leaves the
// session awaiting another attempt.
func (s *Service) Verify(ctx context.Context, sid, code string) error {
	if s.State(sid) != StateAwaitingOTP {
		return ErrWrongStep
	}

	record, err := s.pendingOTP(sid)
	if err != nil {
		return err
	}

	if err := s.engine.Validate(record, code); err != nil {
		slog.Warn("recovery_verify_failed", "token", record.Token)
		return err
	}

	s.engine.MarkUsed(record)
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding code record: %w", err)
	}
	s.sessions.Set(sid, keyOTP, string(encoded))
	s.sessions.Set(sid, keyState, string(StateAwaitingNewPassword))

	slog.Info("recovery_verified", "token", record.Token)
	return nil
}

// Reset sets the new password and completes the flow. The account is
// resolved again by the stored email; if it disappeared mid-flow the state
// does not change.
func (s *Service) Reset(ctx context.Context, sid, newPassword string) error {
	if s.State(sid) != StateAwaitingNewPassword {
		return ErrWrongStep
	}

	emailAddr, ok := s.sessions.Get(sid, keyEmail)
	if !ok {
		return ErrWrongStep
	}

	user, err := s.repo.GetUserByEmail(ctx, emailAddr, true)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwords.SetPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}

	s.sessions.Delete(sid, keyOTP)
	s.sessions.Delete(sid, keyEmail)
	s.sessions.Set(sid, keyState, string(StateCompleted))

	slog.Info("recovery_completed", "user_id", user.ID)
	return nil
}

// pendingOTP decodes the code record stored in the session.
func (s *Service) pendingOTP(sid string) (*models.OTP, error) {
	encoded, ok := s.sessions.Get(sid, keyOTP)
	if !ok {
		return nil, ErrWrongStep
	}

	var record models.OTP
	if err := json.Unmarshal([]byte(encoded), &record); err != nil {
		return nil, fmt.Errorf("decoding code record: %w", err)
	}
	return &record, nil
}
