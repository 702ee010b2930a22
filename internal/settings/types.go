// Package settings implements the single mutation path for application
// settings. Every engine that changes a setting (direct edit, restore,
// import) goes through Service.Apply, which is what keeps the audit trail
// complete: one change record per value mutation, no exceptions.
package settings

import (
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// Actor identifies who performs a mutation. The identity fields are opaque
// strings supplied by the web layer; the core only records them.
type Actor struct {
	UserID        string
	DisplayName   string
	IPAddress     string
	UserAgent     string
	CanEditSystem bool
}

// Meta carries the display metadata needed to create a setting row for a key
// the store has never seen (import of new keys).
type Meta struct {
	Category    string
	Type        models.SettingType
	Description string
	IsSystem    bool
	IsEncrypted bool
}

// ChangeCommand is one explicit setting mutation. NewValue is the raw
// serialized value; structured types carry JSON.
type ChangeCommand struct {
	Key      string
	NewValue string
	Actor    Actor
	Reason   string
	Origin   models.ChangeOrigin

	// Meta is only consulted when the key does not exist yet and the
	// definition registry does not know it either.
	Meta *Meta
}

// Entry is one setting in a snapshot: the decrypted logical value plus the
// metadata the diff/restore/import engines carry through to the UI layer.
type Entry struct {
	Value       string             `json:"value"`
	Category    string             `json:"category"`
	Type        models.SettingType `json:"type"`
	Description string             `json:"description,omitempty"`
	IsSystem    bool               `json:"is_system,omitempty"`
	IsEncrypted bool               `json:"is_encrypted,omitempty"`
}

// Snapshot is a full key-value view of the settings store at one point in
// time. It is always an independent deep copy; mutating the live store never
// alters a snapshot taken earlier.
type Snapshot map[string]Entry

// Values reduces the snapshot to the plain key-value map the diff engine
// works on, with each value in canonical form.
func (s Snapshot) Values() map[string]any {
	values := make(map[string]any, len(s))
	for key, entry := range s {
		values[key] = Canonical(entry.Type, entry.Value)
	}

	return values
}
