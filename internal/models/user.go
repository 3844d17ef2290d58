// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// User is an account in the admin dashboard.
type User struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// IsSuperuser reports whether the user holds the highest tier.
func (u *User) IsSuperuser() bool {
	return u.Role == RoleSuperuser
}
