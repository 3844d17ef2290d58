// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package otp issues and validates one-time codes for password recovery.
package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/paperdeck/wallpaper-admin/internal/models"
)

// ErrInvalidOTP is returned for a mismatched, already used, or expired code.
var ErrInvalidOTP = errors.New("invalid or expired code")

const (
	codeMin = 100000
	codeMax = 999999
)

// Engine creates and checks one-time codes.
type Engine struct {
	ttl time.Duration
	now func() time.Time
}

// NewEngine creates an engine with the default 5 minute code lifetime.
func NewEngine() *Engine {
	return &Engine{ttl: models.OTPLifetime, now: time.Now}
}

// NewEngineWithClock creates an engine with a custom lifetime and clock.
func NewEngineWithClock(ttl time.Duration, now func() time.Time) *Engine {
	return &Engine{ttl: ttl, now: now}
}

// Issue generates a fresh code bound to the given user. Codes are uniformly
// random in [100000, 999999], so they are always six digits wide.
func (e *Engine) Issue(userID int64) (*models.OTP, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return nil, fmt.Errorf("generating code: %w", err)
	}

	return &models.OTP{
		Token:    uuid.New(),
		UserID:   userID,
		Code:     fmt.Sprintf("%06d", codeMin+n.Int64()),
		IssuedAt: e.now(),
	}, nil
}

// Validate checks a submitted code against the record. It does not mutate
// the record; marking a code used is the caller's explicit step.
func (e *Engine) Validate(record *models.OTP, submitted string) error {
	if record == nil || record.Used {
		return ErrInvalidOTP
	}
	if e.now().Sub(record.IssuedAt) >= e.ttl {
		return ErrInvalidOTP
	}
	if submitted != record.Code {
		return ErrInvalidOTP
	}
	return nil
}

// MarkUsed consumes the record so it cannot be redeemed again.
func (e *Engine) MarkUsed(record *models.OTP) {
	record.Used = true
}
