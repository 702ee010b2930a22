// Package backup provides CRUD and aggregate operations for backup rows.
package backup

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

const (
	// DefaultPerPage is the page size used when the caller passes zero.
	DefaultPerPage = 25

	recentWindow = 7 * 24 * time.Hour
)

var (
	// ErrBackupNotFound is returned when a backup is not found.
	ErrBackupNotFound = errors.New("backup not found")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// sortColumns whitelists the columns List accepts for ordering.
var sortColumns = map[string]string{ //nolint:gochecknoglobals
	"name":        "name",
	"created_at":  "created_at",
	"backup_type": "backup_type",
}

// Filter narrows and orders a backup listing.
type Filter struct {
	Search        string
	SortBy        string
	SortDirection string
}

// Stats summarizes the backup table without loading snapshot payloads.
type Stats struct {
	TotalBackups     int64      `json:"total_backups"`
	RecentBackups    int64      `json:"recent_backups"`
	TotalSizeBytes   int64      `json:"total_size_bytes"`
	OldestBackupDate *time.Time `json:"oldest_backup_date"`
}

// Create persists a new backup row.
func Create(db *gorm.DB, b *models.Backup) (*models.Backup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	result := db.Create(b)
	if result.Error != nil {
		return nil, result.Error
	}

	return b, nil
}

// GetByID retrieves a backup by its ID.
func GetByID(db *gorm.DB, id uint64) (*models.Backup, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var b models.Backup
	result := db.First(&b, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrBackupNotFound
		}
		return nil, result.Error
	}

	return &b, nil
}

// List returns one page of backups plus the total row count for the filter.
// Search matches name or description case-insensitively.
func List(db *gorm.DB, filter Filter, page, perPage int) ([]models.Backup, int64, error) {
	if db == nil {
		return nil, 0, ErrDBNil
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}

	query := db.Model(&models.Backup{})

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}

	direction := "DESC"
	if strings.EqualFold(filter.SortDirection, "asc") {
		direction = "ASC"
	}

	var backups []models.Backup
	result := query.
		Order(fmt.Sprintf("%s %s", column, direction)).
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&backups)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	return backups, total, nil
}

// Delete hard-deletes a backup by ID. Irreversible.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Backup{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBackupNotFound
	}

	return nil
}

// ComputeStats aggregates backup counts and sizes at the storage layer so
// snapshot payloads never get loaded into memory.
func ComputeStats(db *gorm.DB) (*Stats, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var stats Stats

	if err := db.Model(&models.Backup{}).Count(&stats.TotalBackups).Error; err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-recentWindow)
	if err := db.Model(&models.Backup{}).
		Where("created_at >= ?", cutoff).
		Count(&stats.RecentBackups).Error; err != nil {
		return nil, err
	}

	var size *int64
	if err := db.Model(&models.Backup{}).
		Select("SUM(LENGTH(settings_data))").
		Scan(&size).Error; err != nil {
		return nil, err
	}
	if size != nil {
		stats.TotalSizeBytes = *size
	}

	if stats.TotalBackups > 0 {
		var oldest models.Backup
		if err := db.Model(&models.Backup{}).
			Order("created_at ASC").
			First(&oldest).Error; err != nil {
			return nil, err
		}
		stats.OldestBackupDate = &oldest.CreatedAt
	}

	return &stats, nil
}
