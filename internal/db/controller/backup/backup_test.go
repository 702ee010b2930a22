package backup

import (
	"testing"
	"time"

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

	err = db.AutoMigrate(&models.Backup{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func seedBackups(t *testing.T, db *gorm.DB, backups []models.Backup) {
	t.Helper()
	for i := range backups {
		err := db.Create(&backups[i]).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestCreateAndGetByID(t *testing.T) {
	db := setupTestDB(t)

	_, err := Create(nil, &models.Backup{Name: "x"})
	require.ErrorIs(t, err, ErrDBNil)

	created, err := Create(db, &models.Backup{
		Name:         "before upgrade",
		Description:  "pre 2.0",
		SettingsData: []byte(`{"app.name":{"value":"My Site"}}`),
		BackupType:   models.BackupTypeManual,
		CreatedBy:    "admin",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := GetByID(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "before upgrade", got.Name)
	assert.Equal(t, created.SettingsData, got.SettingsData)

	_, err = GetByID(db, created.ID+100)
	require.ErrorIs(t, err, ErrBackupNotFound)
}

func TestList(t *testing.T) {
	db := setupTestDB(t)

	seedBackups(t, db, []models.Backup{
		{Name: "alpha", Description: "weekly snapshot", SettingsData: []byte("{}")},
		{Name: "Beta", Description: "before migration", SettingsData: []byte("{}")},
		{Name: "gamma", Description: "nightly", SettingsData: []byte("{}")},
	})

	testCases := []struct {
		name          string
		filter        Filter
		page          int
		perPage       int
		expectedNames []string
		expectedTotal int64
	}{
		{
			name:          "no filter sorted by name asc",
			filter:        Filter{SortBy: "name", SortDirection: "asc"},
			expectedNames: []string{"Beta", "alpha", "gamma"},
			expectedTotal: 3,
		},
		{
			name:          "search matches name case-insensitively",
			filter:        Filter{Search: "beta", SortBy: "name", SortDirection: "asc"},
			expectedNames: []string{"Beta"},
			expectedTotal: 1,
		},
		{
			name:          "search matches description",
			filter:        Filter{Search: "MIGRATION", SortBy: "name", SortDirection: "asc"},
			expectedNames: []string{"Beta"},
			expectedTotal: 1,
		},
		{
			name:          "pagination",
			filter:        Filter{SortBy: "name", SortDirection: "asc"},
			page:          2,
			perPage:       2,
			expectedNames: []string{"gamma"},
			expectedTotal: 3,
		},
		{
			name:          "unknown sort column falls back to created_at",
			filter:        Filter{SortBy: "settings_data; DROP TABLE backups"},
			expectedNames: []string{"gamma", "Beta", "alpha"},
			expectedTotal: 3,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			backups, total, err := List(db, tc.filter, tc.page, tc.perPage)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, total)

			names := make([]string, 0, len(backups))
			for _, b := range backups {
				names = append(names, b.Name)
			}

			// created_at fallback ordering can tie within one second; compare
			// as sets for that case, ordered otherwise.
			if tc.filter.SortBy == "name" {
				assert.Equal(t, tc.expectedNames, names)
			} else {
				assert.ElementsMatch(t, tc.expectedNames, names)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	require.ErrorIs(t, Delete(nil, 1), ErrDBNil)
	require.ErrorIs(t, Delete(db, 42), ErrBackupNotFound)

	seedBackups(t, db, []models.Backup{
		{Name: "doomed", SettingsData: []byte("{}")},
	})

	var b models.Backup
	require.NoError(t, db.First(&b).Error)

	require.NoError(t, Delete(db, b.ID))
	require.ErrorIs(t, Delete(db, b.ID), ErrBackupNotFound)
}

func TestComputeStats(t *testing.T) {
	db := setupTestDB(t)

	// empty table
	stats, err := ComputeStats(db)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalBackups)
	assert.Zero(t, stats.TotalSizeBytes)
	assert.Nil(t, stats.OldestBackupDate)

	old := time.Now().Add(-30 * 24 * time.Hour)
	seedBackups(t, db, []models.Backup{
		{Name: "ancient", SettingsData: []byte("12345"), CreatedAt: old},
		{Name: "fresh", SettingsData: []byte("1234567890")},
	})

	stats, err = ComputeStats(db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBackups)
	assert.Equal(t, int64(1), stats.RecentBackups)
	assert.Equal(t, int64(15), stats.TotalSizeBytes)
	require.NotNil(t, stats.OldestBackupDate)
	assert.WithinDuration(t, old, *stats.OldestBackupDate, time.Second)
}
