package service

import (
	"fmt"
	"testing"

	"github.com/hyeonlab/accounts-backend/internal/app/model"
	"github.com/hyeonlab/accounts-backend/internal/app/repository"
	"github.com/hyeonlab/accounts-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUserServiceTest(t *testing.T) (UserService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	return NewUserService(userRepo), userRepo
}

func strPtr(s string) *string { return &s }

func TestUserService_Create(t *testing.T) {
	userService, _ := setupUserServiceTest(t)

	user, err := userService.Create("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, model.StatusActive, user.Status)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = userService.Create("Another User", "test@example.com", "password456")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestUserService_List(t *testing.T) {
	userService, _ := setupUserServiceTest(t)

	for i := 1; i <= 7; i++ {
		_, err := userService.Create(
			fmt.Sprintf("User %d", i),
			fmt.Sprintf("user%d@example.com", i),
			"password123",
		)
		require.NoError(t, err)
	}

	tests := []struct {
		name         string
		page         int
		pageSize     int
		wantCount    int
		wantPage     int
		wantLastPage int
	}{
		{
			name:         "First page",
			page:         1,
			pageSize:     3,
			wantCount:    3,
			wantPage:     1,
			wantLastPage: 3,
		},
		{
			name:         "Last partial page",
			page:         3,
			pageSize:     3,
			wantCount:    1,
			wantPage:     3,
			wantLastPage: 3,
		},
		{
			name:         "Beyond last page",
			page:         5,
			pageSize:     3,
			wantCount:    0,
			wantPage:     5,
			wantLastPage: 3,
		},
		{
			name:         "Defaults applied",
			page:         0,
			pageSize:     0,
			wantCount:    7,
			wantPage:     1,
			wantLastPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := userService.List(tt.page, tt.pageSize, repository.UserFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(7), result.Total)
			assert.Equal(t, tt.wantPage, result.Page)
			assert.Equal(t, tt.wantLastPage, result.LastPage)
			assert.Len(t, result.Users, tt.wantCount)
		})
	}
}

func TestUserService_List_Filter(t *testing.T) {
	userService, userRepo := setupUserServiceTest(t)

	active, err := userService.Create("Active User", "active@example.com", "password123")
	require.NoError(t, err)
	inactive, err := userService.Create("Inactive User", "inactive@example.com", "password123")
	require.NoError(t, err)

	inactive.Status = model.StatusInactive
	require.NoError(t, userRepo.Update(inactive))

	result, err := userService.List(1, 10, repository.UserFilter{Status: string(model.StatusActive)})
	require.NoError(t, err)
	require.Len(t, result.Users, 1)
	assert.Equal(t, active.ID, result.Users[0].ID)
}

func TestUserService_Update(t *testing.T) {
	userService, _ := setupUserServiceTest(t)

	user, err := userService.Create("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	other, err := userService.Create("Other User", "other@example.com", "password123")
	require.NoError(t, err)
	originalHash := user.PasswordHash

	// Name only; password stays
	updated, err := userService.Update(user.ID, strPtr("Renamed"), nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, originalHash, updated.PasswordHash)

	// Email collision with another user
	_, err = userService.Update(user.ID, nil, strPtr(other.Email), nil, nil)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	// Re-submitting the user's own email is fine
	_, err = userService.Update(user.ID, nil, strPtr(user.Email), nil, nil)
	require.NoError(t, err)

	// Password change rehashes
	updated, err = userService.Update(user.ID, nil, nil, strPtr("newpassword1"), nil)
	require.NoError(t, err)
	assert.NotEqual(t, originalHash, updated.PasswordHash)

	// Status change
	status := model.StatusInactive
	updated, err = userService.Update(user.ID, nil, nil, nil, &status)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, updated.Status)

	// Unknown user
	_, err = userService.Update(9999, strPtr("Nobody"), nil, nil, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_Delete(t *testing.T) {
	userService, _ := setupUserServiceTest(t)

	user, err := userService.Create("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, userService.Delete(user.ID))

	_, err = userService.GetByID(user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.ErrorIs(t, userService.Delete(user.ID), ErrUserNotFound)
}
