package setting

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

	// Migrate the schema
	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()
	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingKey    string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingKey:    "app.name",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty key",
			dbParam:       db,
			settingKey:    "",
			expectedError: ErrSettingKeyEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingKey:    "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:       "successful get",
			dbParam:    db,
			settingKey: "app.name",
			seedData: []models.Setting{
				{Key: "app.name", Value: []byte("My Site"), Category: "basic"},
			},
			expectedValue: []byte("My Site"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(tc.dbParam, tc.settingKey)

			if tc.expectedError != nil {
				require.Error(t, err)
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, setting)
				assert.Equal(t, tc.settingKey, setting.Key)
				assert.Equal(t, tc.expectedValue, setting.Value)
			}
		})
	}
}

func TestGetAll(t *testing.T) {
	db := setupTestDB(t)

	_, err := GetAll(nil)
	require.ErrorIs(t, err, ErrDBNil)

	seedSettings(t, db, []models.Setting{
		{Key: "app.timezone", Value: []byte("UTC"), Category: "basic"},
		{Key: "app.name", Value: []byte("My Site"), Category: "basic"},
		{Key: "security.session_lifetime", Value: []byte("120"), Category: "security"},
	})

	settings, err := GetAll(db)
	require.NoError(t, err)
	require.Len(t, settings, 3)

	// ordered by key
	assert.Equal(t, "app.name", settings[0].Key)
	assert.Equal(t, "app.timezone", settings[1].Key)
	assert.Equal(t, "security.session_lifetime", settings[2].Key)
}

func TestGetByCategories(t *testing.T) {
	db := setupTestDB(t)

	seedSettings(t, db, []models.Setting{
		{Key: "app.name", Value: []byte("My Site"), Category: "basic"},
		{Key: "mail.host", Value: []byte("localhost"), Category: "notification"},
		{Key: "security.session_lifetime", Value: []byte("120"), Category: "security"},
	})

	testCases := []struct {
		name         string
		categories   []string
		expectedKeys []string
	}{
		{
			name:         "empty categories returns all",
			categories:   nil,
			expectedKeys: []string{"app.name", "mail.host", "security.session_lifetime"},
		},
		{
			name:         "single category",
			categories:   []string{"security"},
			expectedKeys: []string{"security.session_lifetime"},
		},
		{
			name:         "multiple categories",
			categories:   []string{"basic", "notification"},
			expectedKeys: []string{"app.name", "mail.host"},
		},
		{
			name:         "unknown category",
			categories:   []string{"appearance"},
			expectedKeys: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings, err := GetByCategories(db, tc.categories)
			require.NoError(t, err)

			keys := make([]string, 0, len(settings))
			for _, s := range settings {
				keys = append(keys, s.Key)
			}

			assert.Equal(t, tc.expectedKeys, keys)
		})
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(nil, &models.Setting{Key: "app.name"})
	require.ErrorIs(t, err, ErrDBNil)

	_, err = Create(db, &models.Setting{})
	require.ErrorIs(t, err, ErrSettingKeyEmpty)

	created, err := Create(db, &models.Setting{
		Key:      "app.name",
		Value:    []byte("My Site"),
		Category: "basic",
		Type:     models.TypeText,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	_, err = Create(db, &models.Setting{Key: "app.name", Category: "basic"})
	require.ErrorIs(t, err, ErrSettingAlreadyExists)
}

func TestSetValue(t *testing.T) {
	db := setupTestDB(t)

	_, err := SetValue(db, "app.name", []byte("x"))
	require.ErrorIs(t, err, ErrSettingNotFound)

	seedSettings(t, db, []models.Setting{
		{Key: "app.name", Value: []byte("Old"), Category: "basic", IsSystem: true},
	})

	updated, err := SetValue(db, "app.name", []byte("New"))
	require.NoError(t, err)
	assert.Equal(t, []byte("New"), updated.Value)

	// metadata untouched
	assert.True(t, updated.IsSystem)
	assert.Equal(t, "basic", updated.Category)
}

func TestUpsert(t *testing.T) {
	db := setupTestDB(t)

	// insert path
	created, err := Upsert(db, &models.Setting{
		Key:      "app.name",
		Value:    []byte("My Site"),
		Category: "basic",
		Type:     models.TypeText,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	// flags of the live row survive an upsert
	db.Model(&models.Setting{}).Where("key = ?", "app.name").
		Updates(map[string]any{"is_system": true, "is_encrypted": true})

	updated, err := Upsert(db, &models.Setting{
		Key:      "app.name",
		Value:    []byte("Renamed"),
		Category: "branding",
		Type:     models.TypeText,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("Renamed"), updated.Value)
	assert.Equal(t, "branding", updated.Category)
	assert.True(t, updated.IsSystem)
	assert.True(t, updated.IsEncrypted)
}
