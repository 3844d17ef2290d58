// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"golang.org/x/crypto/bcrypt"

	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("invalid role")
)

// dummyHash is used for constant-time login to prevent timing attacks
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

type Service struct {
	repo *repository.Repository
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Login authenticates a user by username and returns the user if successful.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Constant-time: always perform bcrypt comparison to prevent timing attacks
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			slog.Warn("login_failed", "username", username, "reason", "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.Warn("login_failed", "username", username, "reason", "invalid_password")
		return nil, ErrInvalidCredentials
	}

	slog.Info("login_success", "user_id", user.ID, "username", username)
	return user, nil
}

// HashPassword returns the bcrypt hash of a plaintext password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CreateUser creates a new account with the given role.
func (s *Service) CreateUser(ctx context.Context, username, emailAddr, password string, role models.Role) (*models.User, error) {
	if _, err := mail.ParseAddress(emailAddr); err != nil {
		return nil, ErrInvalidEmail
	}
	if _, ok := models.ParseRole(string(role)); !ok {
		return nil, ErrInvalidRole
	}

	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user_created", "user_id", user.ID, "username", username, "role", role)
	return user, nil
}

// SetPassword hashes and persists a new password for the user.
func (s *Service) SetPassword(ctx context.Context, userID int64, password string) error {
	passwordHash, err := s.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// EnsureSuperuser creates the initial superuser when the directory has none.
// It is a no-op when a superuser already exists or no credentials are
// configured.
func (s *Service) EnsureSuperuser(ctx context.Context, username, emailAddr, password string) error {
	if emailAddr == "" || password == "" {
		return nil
	}

	count, err := s.repo.CountUsersByRole(ctx, models.RoleSuperuser)
	if err != nil {
		return fmt.Errorf("failed to count superusers: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.CreateUser(ctx, username, emailAddr, password, models.RoleSuperuser); err != nil {
		return fmt.Errorf("failed to create superuser: %w", err)
	}
	return nil
}
