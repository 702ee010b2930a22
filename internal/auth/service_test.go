package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(setupTestDB(t))

	created, err := svc.CreateUser("alice", "Alice Admin", "s3cret", true)
	require.NoError(t, err)
	assert.True(t, created.CanEditSystem)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate("alice", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "Alice Admin", user.DisplayName)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("alice", "wrong")
		require.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate("mallory", "s3cret")
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAuthenticateDisabledAccount(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)

	user, err := svc.CreateUser("bob", "Bob", "s3cret", false)
	require.NoError(t, err)

	require.NoError(t, db.Model(user).Update("active", false).Error)

	_, err = svc.Authenticate("bob", "s3cret")
	require.ErrorIs(t, err, ErrUserAccountDisabled)
}

func TestCreateUserDuplicate(t *testing.T) {
	svc := NewService(setupTestDB(t))

	_, err := svc.CreateUser("alice", "Alice", "s3cret", false)
	require.NoError(t, err)

	_, err = svc.CreateUser("alice", "Other Alice", "s3cret", false)
	require.ErrorIs(t, err, ErrUserNameExists)

	count, err := svc.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
