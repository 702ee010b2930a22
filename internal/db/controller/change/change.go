// Package change provides append and query operations for the settings audit
// trail. Records are append-only; nothing in this package mutates or deletes
// an existing row.
package change

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

const (
	// DefaultPerPage is the page size used when the caller passes zero.
	DefaultPerPage = 25
)

var (
	// ErrChangeNotFound is returned when a change record is not found.
	ErrChangeNotFound = errors.New("change record not found")
	// ErrSettingKeyEmpty is returned when appending a record without a setting key.
	ErrSettingKeyEmpty = errors.New("change record setting key cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Filter narrows history queries. All set fields are combined with AND.
// DateFrom and DateTo are inclusive on both ends.
type Filter struct {
	Search        string
	Category      string
	UserID        string
	ImportantOnly bool
	DateFrom      *time.Time
	DateTo        *time.Time
}

// Stats aggregates history counts. Total counts are table-wide; FilteredCount
// honors the same filter as Query.
type Stats struct {
	TotalChanges     int64 `json:"total_changes"`
	ImportantChanges int64 `json:"important_changes"`
	UniqueSettings   int64 `json:"unique_settings"`
	UniqueUsers      int64 `json:"unique_users"`
	FilteredCount    int64 `json:"filtered_count"`
}

// Append persists one new change record.
func Append(db *gorm.DB, rec *models.ChangeRecord) (*models.ChangeRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if rec == nil || rec.SettingKey == "" {
		return nil, ErrSettingKeyEmpty
	}

	result := db.Create(rec)
	if result.Error != nil {
		return nil, result.Error
	}

	return rec, nil
}

// GetByID retrieves a change record by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.ChangeRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var rec models.ChangeRecord
	result := db.First(&rec, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrChangeNotFound
		}
		return nil, result.Error
	}

	return &rec, nil
}

// Query returns one page of change records, newest first, plus the total row
// count for the filter.
func Query(db *gorm.DB, filter Filter, page, perPage int) ([]models.ChangeRecord, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	query := applyFilter(db, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.ChangeRecord
	result := query.
		Order("change_records.created_at DESC, change_records.id DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&records)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return records, total, nil
}

// ComputeStats aggregates history counts. The total/important/unique counts
// cover the whole trail; only FilteredCount applies the filter, so callers
// can show the overall trail next to the filtered view.
func ComputeStats(db *gorm.DB, filter Filter) (*Stats, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var stats Stats

	if err := db.Model(&models.ChangeRecord{}).Count(&stats.TotalChanges).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.ChangeRecord{}).
		Where("is_important = ?", true).
		Count(&stats.ImportantChanges).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.ChangeRecord{}).
		Distinct("setting_key").
		Count(&stats.UniqueSettings).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.ChangeRecord{}).
		Where("user_id <> ''").
		Distinct("user_id").
		Count(&stats.UniqueUsers).Error; err != nil {
		return nil, err
	}

	if err := applyFilter(db, filter).Count(&stats.FilteredCount).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// applyFilter builds the conjunctive WHERE clause shared by Query and
// ComputeStats. The category filter joins through the settings table since
// records only carry the setting key.
func applyFilter(db *gorm.DB, filter Filter) *gorm.DB {
	query := db.Model(&models.ChangeRecord{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(setting_key) LIKE ? OR LOWER(reason) LIKE ? OR LOWER(user_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if filter.Category != "" {
		query = query.
			Joins("JOIN settings ON settings.key = change_records.setting_key").
			Where("settings.category = ?", filter.Category)
	}

	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}

	if filter.ImportantOnly {
		query = query.Where("is_important = ?", true)
	}

	if filter.DateFrom != nil {
		query = query.Where("change_records.created_at >= ?", *filter.DateFrom)
	}

	if filter.DateTo != nil {
		query = query.Where("change_records.created_at <= ?", *filter.DateTo)
	}

	return query
}
