// Package auth provides local credential verification for back-office
// administrators. Federation (OIDC, LDAP) is handled outside this service;
// only the local database accounts live here.
package auth

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// Service provides authentication against the local user table.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Authenticate verifies a username and password against the local database.
func (s *Service) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query user")
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// CreateUser creates a new local user with a hashed password.
func (s *Service) CreateUser(username, displayName, password string, canEditSystem bool) (*models.User, error) {
	var existing models.User

	err := s.db.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return nil, ErrUserNameExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(err, "failed to check existing user")
	}

	user := models.User{
		Active:        true,
		Username:      username,
		DisplayName:   displayName,
		Password:      models.HashPassword(password),
		CanEditSystem: canEditSystem,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create user")
	}

	return &user, nil
}

// CountUsers returns the number of user accounts.
func (s *Service) CountUsers() (int64, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "failed to count users")
	}

	return count, nil
}
