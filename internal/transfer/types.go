// Package transfer implements the settings export and staged import
// pipeline: upload, conflict detection, resolution, preview, execute.
package transfer

import (
	"time"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// PayloadVersion is the format version stamped into every export.
const PayloadVersion = 1

// ExportedSetting is one setting in a portable export document.
type ExportedSetting struct {
	Key         string             `json:"key"`
	Value       string             `json:"value"`
	Category    string             `json:"category"`
	Type        models.SettingType `json:"type"`
	Description string             `json:"description,omitempty"`
}

// Payload is the self-describing export document. Export and import
// round-trip losslessly through it.
type Payload struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Settings   []ExportedSetting `json:"settings"`
}

// Document is what the caller hands to the download sink: bytes, a filename
// and a content type. Delivery is the caller's responsibility.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Options narrows an export.
type Options struct {
	// OnlyChanged restricts the export to settings whose live value differs
	// from their registered default.
	OnlyChanged bool

	// IncludeSystem includes settings flagged as system-protected.
	IncludeSystem bool
}

// Conflict describes an incoming key that already exists live with a
// different value.
type Conflict struct {
	Key              string `json:"key"`
	Category         string `json:"category"`
	IsSystem         bool   `json:"is_system"`
	ExistingValue    string `json:"existing_value"`
	NewValue         string `json:"new_value"`
	HasValueConflict bool   `json:"has_value_conflict"`
}

// Resolution is the strategy applied uniformly to all conflicts in one
// import run.
type Resolution string

const (
	// ResolutionSkip keeps the live value for every conflicting key.
	ResolutionSkip Resolution = "skip"
	// ResolutionOverwrite replaces conflicting values and display metadata
	// with the incoming ones.
	ResolutionOverwrite Resolution = "overwrite"
	// ResolutionMerge takes the incoming value but preserves all live
	// metadata, including the system and encryption flags.
	ResolutionMerge Resolution = "merge"
)

// Selection narrows an import run to specific categories or keys before
// preview and execute. Empty fields select everything.
type Selection struct {
	Categories []string `json:"categories,omitempty"`
	Keys       []string `json:"keys,omitempty"`
}

// Matches reports whether a payload setting is part of the selection.
func (s Selection) Matches(setting ExportedSetting) bool {
	if len(s.Keys) > 0 && !containsString(s.Keys, setting.Key) {
		return false
	}

	if len(s.Categories) > 0 && !containsString(s.Categories, setting.Category) {
		return false
	}

	return true
}

// PreviewResult summarizes what an import execute would touch.
type PreviewResult struct {
	Total            int      `json:"total"`
	NewSettings      int      `json:"new_settings"`
	ExistingSettings int      `json:"existing_settings"`
	Categories       []string `json:"categories"`
}

// KeyError is one per-key import failure. Failures never abort the rest of
// the run.
type KeyError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Result summarizes an executed import. Partial success is normal: Errors
// holds the keys that failed while everything else completed.
type Result struct {
	Created int        `json:"created"`
	Updated int        `json:"updated"`
	Skipped int        `json:"skipped"`
	Errors  []KeyError `json:"errors"`
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
