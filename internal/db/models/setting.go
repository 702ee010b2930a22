// Package models contains database model definitions.
package models

import "time"

// SettingType identifies the logical input type of a setting value.
type SettingType string

// Supported setting types.
const (
	TypeText        SettingType = "text"
	TypeTextarea    SettingType = "textarea"
	TypeNumber      SettingType = "number"
	TypeEmail       SettingType = "email"
	TypeURL         SettingType = "url"
	TypePassword    SettingType = "password"
	TypeBoolean     SettingType = "boolean"
	TypeSelect      SettingType = "select"
	TypeMultiselect SettingType = "multiselect"
	TypeColor       SettingType = "color"
	TypeFile        SettingType = "file"
	TypeImage       SettingType = "image"
	TypeJSON        SettingType = "json"
	TypeCode        SettingType = "code"
)

// Setting represents a configuration setting stored in the database.
// The key is dot-namespaced (e.g. "app.timezone") and immutable once created.
// When IsEncrypted is set, Value holds ciphertext; decryption happens at the
// settings service boundary, never in this layer.
type Setting struct {
	ID          uint64      `gorm:"primaryKey"`
	Key         string      `gorm:"unique;size:255;not null"`
	Value       []byte      `gorm:"type:blob"`
	Category    string      `gorm:"index;size:100;not null"`
	Type        SettingType `gorm:"size:20;not null;default:'text'"`
	Description string      `gorm:"size:500"`
	IsEncrypted bool        `gorm:"not null;default:false"`
	IsSystem    bool        `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
