package settings

import (
	"encoding/json"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// structuredTypes are the setting types whose raw value is a JSON document.
var structuredTypes = map[models.SettingType]bool{ //nolint:gochecknoglobals
	models.TypeJSON:        true,
	models.TypeMultiselect: true,
	models.TypeCode:        false, // code is opaque text, not JSON
}

// Canonical renders a raw value in a stable comparable form. Structured
// values are decoded and re-encoded, which sorts object keys, so two JSON
// documents that differ only in key order or whitespace compare equal.
// Unparseable input is returned as-is rather than failing; comparison then
// falls back to the literal text.
func Canonical(t models.SettingType, raw string) string {
	if !structuredTypes[t] {
		return raw
	}

	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}

	data, err := json.Marshal(v)
	if err != nil {
		return raw
	}

	return string(data)
}
