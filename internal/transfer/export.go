package transfer

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// Pipeline runs settings exports and staged imports through the settings
// mutation path.
type Pipeline struct {
	svc *settings.Service
}

// NewPipeline creates an import/export pipeline.
func NewPipeline(svc *settings.Service) *Pipeline {
	return &Pipeline{svc: svc}
}

// Export serializes a filtered subset of the live settings. An empty
// category list exports everything. Settings are key-sorted for stable
// output.
func (p *Pipeline) Export(db *gorm.DB, categories []string, opts Options) (*Payload, error) {
	snapshot, err := p.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot settings")
	}

	payload := &Payload{
		Version:    PayloadVersion,
		ExportedAt: time.Now().UTC(),
		Settings:   []ExportedSetting{},
	}

	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := snapshot[key]

		if len(categories) > 0 && !containsString(categories, entry.Category) {
			continue
		}

		if entry.IsSystem && !opts.IncludeSystem {
			continue
		}

		if opts.OnlyChanged && !p.changedFromDefault(key, entry) {
			continue
		}

		payload.Settings = append(payload.Settings, ExportedSetting{
			Key:         key,
			Value:       entry.Value,
			Category:    entry.Category,
			Type:        entry.Type,
			Description: entry.Description,
		})
	}

	return payload, nil
}

// Document renders a payload for the download sink.
func (p *Pipeline) Document(payload *Payload) (*Document, error) {
	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to serialize export")
	}

	return &Document{
		Filename:    fmt.Sprintf("settings-export-%s.json", payload.ExportedAt.Format("20060102-150405")),
		ContentType: "application/json",
		Body:        body,
	}, nil
}

// changedFromDefault reports whether the live value differs canonically from
// the registered default. Keys without a registered definition count as
// changed; there is no default to match.
func (p *Pipeline) changedFromDefault(key string, entry settings.Entry) bool {
	def, ok := p.svc.Registry().Lookup(key)
	if !ok {
		return true
	}

	return settings.Canonical(entry.Type, entry.Value) != settings.Canonical(entry.Type, def.Default)
}
