// Package setting provides CRUD operations for persisted settings rows.
// It deals in raw stored values only; encryption, canonicalization and the
// audit trail live in the settings service on top of this package.
package setting

import (
	"errors"

	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

const (
	keyQueryPattern = "key = ?"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingKeyEmpty is returned when attempting to create/update a setting with an empty key.
	ErrSettingKeyEmpty = errors.New("setting key cannot be empty")
	// ErrSettingAlreadyExists is returned when attempting to create a setting that already exists.
	ErrSettingAlreadyExists = errors.New("setting already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a setting by its key.
func Get(db *gorm.DB, key string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var setting models.Setting
	result := db.Where(keyQueryPattern, key).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	return &setting, nil
}

// GetAll retrieves all settings ordered by key.
func GetAll(db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting
	result := db.Order("key").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// GetByCategories retrieves settings belonging to the given categories,
// ordered by key. An empty category list returns all settings.
func GetByCategories(db *gorm.DB, categories []string) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if len(categories) == 0 {
		return GetAll(db)
	}

	var settings []models.Setting
	result := db.Where("category IN ?", categories).Order("key").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Create creates a new setting row.
func Create(db *gorm.DB, setting *models.Setting) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if setting == nil || setting.Key == "" {
		return nil, ErrSettingKeyEmpty
	}

	// Check if setting already exists
	var existing models.Setting
	result := db.Where(keyQueryPattern, setting.Key).First(&existing)
	if result.Error == nil {
		return nil, ErrSettingAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	result = db.Create(setting)
	if result.Error != nil {
		return nil, result.Error
	}

	return setting, nil
}

// SetValue updates the stored value of an existing setting by key.
// The key and the rest of the metadata stay untouched.
func SetValue(db *gorm.DB, key string, value []byte) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var setting models.Setting
	result := db.Where(keyQueryPattern, key).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	setting.Value = value
	result = db.Save(&setting)
	if result.Error != nil {
		return nil, result.Error
	}

	return &setting, nil
}

// UpdateMetadata replaces the display metadata of an existing setting,
// leaving its value and protection flags untouched.
func UpdateMetadata(db *gorm.DB, key, category string, settingType models.SettingType, description string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var setting models.Setting
	result := db.Where(keyQueryPattern, key).First(&setting)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, result.Error
	}

	setting.Category = category
	setting.Type = settingType
	setting.Description = description

	result = db.Save(&setting)
	if result.Error != nil {
		return nil, result.Error
	}

	return &setting, nil
}

// Upsert creates the setting if its key is unknown, otherwise updates the
// stored value and display metadata. The IsSystem and IsEncrypted flags of an
// existing row are never overwritten here; they belong to the live store.
func Upsert(db *gorm.DB, setting *models.Setting) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if setting == nil || setting.Key == "" {
		return nil, ErrSettingKeyEmpty
	}

	var existing models.Setting
	result := db.Where(keyQueryPattern, setting.Key).First(&existing)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return Create(db, setting)
	}
	if result.Error != nil {
		return nil, result.Error
	}

	existing.Value = setting.Value
	existing.Category = setting.Category
	existing.Type = setting.Type
	existing.Description = setting.Description

	result = db.Save(&existing)
	if result.Error != nil {
		return nil, result.Error
	}

	return &existing, nil
}
