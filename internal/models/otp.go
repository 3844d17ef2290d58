// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPLifetime is how long a one-time code stays valid after issuance.
const OTPLifetime = 5 * time.Minute

// OTP is a one-time password issued for a password recovery flow.
// The struct is JSON-marshalable so it can live in a session bag.
type OTP struct { //nolint:govet // fieldalignment: readability over optimization
	Token    uuid.UUID `json:"token"`
	UserID   int64     `json:"user_id"`
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
	Used     bool      `json:"used"`
}

// Valid reports whether the code may still be redeemed at the given time.
func (o *OTP) Valid(now time.Time) bool {
	return !o.Used && now.Sub(o.IssuedAt) < OTPLifetime
}
