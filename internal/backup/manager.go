// Package backup implements the backup manager: named, immutable snapshots
// of the full settings store.
package backup

import (
	"errors"
	"unicode/utf8"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	backupctl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/backup"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

var (
	// ErrNameEmpty is returned when creating a backup without a name.
	ErrNameEmpty = errors.New("backup name cannot be empty")

	// ErrNameTooLong is returned when the backup name exceeds the configured maximum.
	ErrNameTooLong = errors.New("backup name exceeds maximum length")
)

// Filter re-exports the listing filter of the storage layer.
type Filter = backupctl.Filter

// Stats re-exports the aggregate summary of the storage layer.
type Stats = backupctl.Stats

// Manager creates, lists and deletes settings backups.
type Manager struct {
	svc           *settings.Service
	maxNameLength int
}

// NewManager creates a backup manager. maxNameLength caps user-supplied
// backup names; zero falls back to 255.
func NewManager(svc *settings.Service, maxNameLength int) *Manager {
	if maxNameLength <= 0 {
		maxNameLength = 255
	}

	return &Manager{
		svc:           svc,
		maxNameLength: maxNameLength,
	}
}

// Create snapshots every current setting into a new backup. The snapshot is
// sealed by the settings cipher before it is persisted and immutable from
// here on; later mutations of the live store never touch it.
func (m *Manager) Create(db *gorm.DB, name, description string, backupType models.BackupType, creator string) (*models.Backup, error) {
	if name == "" {
		return nil, ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > m.maxNameLength {
		return nil, ErrNameTooLong
	}
	if backupType == "" {
		backupType = models.BackupTypeManual
	}

	snapshot, err := m.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot settings")
	}

	data, err := m.svc.SealSnapshot(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to seal snapshot")
	}

	b, err := backupctl.Create(db, &models.Backup{
		Name:         name,
		Description:  description,
		SettingsData: data,
		BackupType:   backupType,
		CreatedBy:    creator,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to persist backup")
	}

	log.Info().
		Uint64("backup_id", b.ID).
		Str("name", b.Name).
		Int("settings", len(snapshot)).
		Msg("settings backup created")

	return b, nil
}

// List returns one page of backups matching the filter plus the total count.
func (m *Manager) List(db *gorm.DB, filter Filter, page, perPage int) ([]models.Backup, int64, error) {
	return backupctl.List(db, filter, page, perPage)
}

// Get retrieves one backup including its snapshot payload.
func (m *Manager) Get(db *gorm.DB, id uint64) (*models.Backup, error) {
	return backupctl.GetByID(db, id)
}

// Snapshot opens a backup's sealed settings payload.
func (m *Manager) Snapshot(b *models.Backup) (settings.Snapshot, error) {
	snapshot, err := m.svc.OpenSnapshot(b.SettingsData)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "corrupt snapshot in backup %d", b.ID)
	}

	return snapshot, nil
}

// Delete hard-deletes a backup. Irreversible.
func (m *Manager) Delete(db *gorm.DB, id uint64) error {
	if err := backupctl.Delete(db, id); err != nil {
		return err
	}

	log.Info().Uint64("backup_id", id).Msg("settings backup deleted")

	return nil
}

// ComputeStats aggregates counts, total payload size and the oldest backup
// date without loading snapshot payloads into memory.
func (m *Manager) ComputeStats(db *gorm.DB) (*Stats, error) {
	return backupctl.ComputeStats(db)
}
