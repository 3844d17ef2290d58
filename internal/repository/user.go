// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"github.com/paperdeck/wallpaper-admin/internal/models"
)

// CreateUser inserts a new user and fills in its generated ID and timestamps.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_hash, role) VALUES (?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return r.db.GetContext(ctx, user, `SELECT * FROM users WHERE id = ?`, id)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE username = ?`, username); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address. With requireSuperuser set,
// only superuser accounts match; anything else reports ErrNotFound so callers
// cannot tell which condition failed.
func (r *Repository) GetUserByEmail(ctx context.Context, email string, requireSuperuser bool) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = ?`
	args := []any{email}
	if requireSuperuser {
		query += ` AND role = ?`
		args = append(args, models.RoleSuperuser)
	}

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUser persists username, email and role changes.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = ?, email = ?, role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		user.Username, user.Email, user.Role, user.ID)
	return err
}

// UpdateUserPassword updates a user's password hash.
func (r *Repository) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		passwordHash, id)
	return err
}

// DeleteUser deletes a user by ID.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// ListUsers returns all users ordered by creation date, oldest first.
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, `SELECT * FROM users ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsersByRole returns the number of users holding the given role.
func (r *Repository) CountUsersByRole(ctx context.Context, role models.Role) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role = ?`, role)
	return count, err
}
