package models

import "time"

// BackupType indicates how a backup was triggered.
type BackupType string

const (
	// BackupTypeManual marks a backup created on demand by a user.
	BackupTypeManual BackupType = "manual"
	// BackupTypeScheduled marks a backup created by an external scheduler.
	BackupTypeScheduled BackupType = "scheduled"
)

// Backup is an immutable full snapshot of all settings at a point in time.
// SettingsData holds the cipher-sealed snapshot and is never mutated after
// creation; restoring reads it, it is deleted whole or not at all.
type Backup struct {
	ID           uint64     `gorm:"primaryKey"`
	Name         string     `gorm:"size:255;not null"`
	Description  string     `gorm:"size:1000"`
	SettingsData []byte     `gorm:"type:blob;not null"`
	BackupType   BackupType `gorm:"size:20;not null;default:'manual'"`
	CreatedBy    string     `gorm:"size:100"`
	CreatedAt    time.Time
}
