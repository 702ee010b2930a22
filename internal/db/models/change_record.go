package models

import "time"

// ChangeOrigin identifies which mutation path produced a change record.
// Restore-originated records are marked structurally so restore-to-value
// cannot loop, instead of string-matching the free-text reason.
type ChangeOrigin string

const (
	// OriginDirect marks a change made by a direct edit.
	OriginDirect ChangeOrigin = "direct"
	// OriginRestore marks a change made by a backup restore or a
	// history restore-to-value.
	OriginRestore ChangeOrigin = "restore"
	// OriginImport marks a change made by the import pipeline.
	OriginImport ChangeOrigin = "import"
)

// ChangeRecord is one append-only audit entry describing a single setting's
// before/after value and the actor who made the change. Records are never
// mutated or deleted by normal operation.
type ChangeRecord struct {
	ID          uint64       `gorm:"primaryKey"`
	SettingKey  string       `gorm:"index;size:255;not null"`
	OldValue    []byte       `gorm:"type:blob"`
	NewValue    []byte       `gorm:"type:blob"`
	UserID      string       `gorm:"index;size:100"`
	UserName    string       `gorm:"size:255"`
	IPAddress   string       `gorm:"size:45"`
	UserAgent   string       `gorm:"size:500"`
	Reason      string       `gorm:"size:1000"`
	Origin      ChangeOrigin `gorm:"size:20;not null;default:'direct'"`
	IsImportant bool         `gorm:"index;not null;default:false"`
	CreatedAt   time.Time    `gorm:"index"`
}
