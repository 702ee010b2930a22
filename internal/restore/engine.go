// Package restore applies backup snapshots onto the live settings store.
//
// Restoring is deliberately non-destructive: keys present live but absent
// from the snapshot are reported by Preview as WillRemove for visibility, but
// Restore never deletes them. Preview and Restore are two separate store
// reads; between them the store-level transaction is the only concurrency
// boundary, so an interleaving writer wins last-writer-wins.
package restore

import (
	"errors"
	"fmt"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/backup"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings/diff"
)

// ErrRestoreFailed wraps any failure inside the restore transaction. The
// transaction is rolled back as a whole; no key is left mutated.
var ErrRestoreFailed = errors.New("restore failed")

// Preview counts what a restore would do, computed by diffing the live store
// against the backup snapshot. WillRemove is informational only.
type Preview struct {
	WillAdd    int `json:"will_add"`
	WillUpdate int `json:"will_update"`
	WillRemove int `json:"will_remove"`
	Unchanged  int `json:"unchanged"`
}

// Result summarizes an applied restore.
type Result struct {
	BackupID   uint64 `json:"backup_id"`
	BackupName string `json:"backup_name"`
	Applied    int    `json:"applied"`
	Unchanged  int    `json:"unchanged"`
}

// Engine restores backup snapshots through the settings mutation path.
type Engine struct {
	svc     *settings.Service
	backups *backup.Manager
}

// NewEngine creates a restore engine.
func NewEngine(svc *settings.Service, backups *backup.Manager) *Engine {
	return &Engine{
		svc:     svc,
		backups: backups,
	}
}

// Preview diffs the live store against the backup's snapshot.
func (e *Engine) Preview(db *gorm.DB, backupID uint64) (*Preview, error) {
	_, snapshot, err := e.load(db, backupID)
	if err != nil {
		return nil, err
	}

	live, err := e.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot live settings")
	}

	r := diff.Diff(live.Values(), snapshot.Values())

	return &Preview{
		WillAdd:    len(r.Added),
		WillUpdate: len(r.Modified),
		WillRemove: len(r.Removed),
		Unchanged:  len(r.Unchanged),
	}, nil
}

// Restore applies every added and modified key of the backup snapshot to the
// live store in one transaction, key-sorted so repeated runs against the same
// inputs produce identical change record sequences. Each key goes through the
// settings mutation path and emits one change record. Live keys absent from
// the snapshot are left alone.
func (e *Engine) Restore(db *gorm.DB, backupID uint64, actor settings.Actor) (*Result, error) {
	b, snapshot, err := e.load(db, backupID)
	if err != nil {
		return nil, err
	}

	live, err := e.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot live settings")
	}

	r := diff.Diff(live.Values(), snapshot.Values())

	keys := make([]string, 0, len(r.Added)+len(r.Modified))
	keys = append(keys, r.Added...)
	keys = append(keys, r.Modified...)
	sort.Strings(keys)

	reason := fmt.Sprintf("restored from backup %s", b.Name)

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, key := range keys {
			entry := snapshot[key]

			_, applyErr := e.svc.Apply(tx, settings.ChangeCommand{
				Key:      key,
				NewValue: entry.Value,
				Actor:    actor,
				Reason:   reason,
				Origin:   models.OriginRestore,
				Meta: &settings.Meta{
					Category:    entry.Category,
					Type:        entry.Type,
					Description: entry.Description,
					IsSystem:    entry.IsSystem,
					IsEncrypted: entry.IsEncrypted,
				},
			})
			if applyErr != nil {
				return pkgerrors.Wrapf(applyErr, "key %s", key)
			}
		}

		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(ErrRestoreFailed, err.Error())
	}

	log.Info().
		Uint64("backup_id", b.ID).
		Str("name", b.Name).
		Int("applied", len(keys)).
		Msg("settings restored from backup")

	return &Result{
		BackupID:   b.ID,
		BackupName: b.Name,
		Applied:    len(keys),
		Unchanged:  len(r.Unchanged),
	}, nil
}

func (e *Engine) load(db *gorm.DB, backupID uint64) (*models.Backup, settings.Snapshot, error) {
	b, err := e.backups.Get(db, backupID)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := e.backups.Snapshot(b)
	if err != nil {
		return nil, nil, err
	}

	return b, snapshot, nil
}
