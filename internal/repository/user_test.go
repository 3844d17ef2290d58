// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	user := testutil.NewTestUser(t, repo, "alice", models.RoleEditor)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, models.RoleEditor, user.Role)
	assert.NotZero(t, user.CreatedAt)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice", models.RoleEditor)

	err := repo.CreateUser(ctx, &models.User{
		Username:     "alice",
		Email:        "other@example.com",
		PasswordHash: "x",
		Role:         models.RoleEditor,
	})

	assert.Error(t, err)
}

func TestGetUserByID(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.NewTestUser(t, repo, "alice", models.RoleAdmin)

	retrieved, err := repo.GetUserByID(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
	assert.Equal(t, created.Username, retrieved.Username)
	assert.Equal(t, models.RoleAdmin, retrieved.Role)
}

func TestGetUserByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserByID(context.Background(), 999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.NewTestUser(t, repo, "alice", models.RoleEditor)

	retrieved, err := repo.GetUserByEmail(ctx, "alice@example.com", false)

	require.NoError(t, err)
	assert.Equal(t, created.ID, retrieved.ID)
}

func TestGetUserByEmail_RequireSuperuser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestUser(t, repo, "alice", models.RoleAdmin)
	boss := testutil.NewTestUser(t, repo, "boss", models.RoleSuperuser)

	// Admin account does not satisfy the superuser requirement.
	_, err := repo.GetUserByEmail(ctx, "alice@example.com", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	retrieved, err := repo.GetUserByEmail(ctx, "boss@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, boss.ID, retrieved.ID)
}

func TestUpdateUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice", models.RoleEditor)
	user.Username = "alicia"
	user.Role = models.RoleAdmin

	require.NoError(t, repo.UpdateUser(ctx, user))

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alicia", retrieved.Username)
	assert.Equal(t, models.RoleAdmin, retrieved.Role)
}

func TestUpdateUserPassword(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice", models.RoleEditor)

	require.NoError(t, repo.UpdateUserPassword(ctx, user.ID, "new-hash"))

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", retrieved.PasswordHash)
}

func TestDeleteUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "alice", models.RoleEditor)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	_, err := repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListUsers(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestUser(t, repo, "alice", models.RoleEditor)
	testutil.NewTestUser(t, repo, "bob", models.RoleAdmin)

	users, err := repo.ListUsers(context.Background())

	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestCountUsersByRole(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestUser(t, repo, "alice", models.RoleSuperuser)
	testutil.NewTestUser(t, repo, "bob", models.RoleEditor)

	count, err := repo.CountUsersByRole(context.Background(), models.RoleSuperuser)

	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
