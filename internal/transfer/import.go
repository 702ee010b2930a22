package transfer

import (
	"encoding/json"
	"sort"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	settingctl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/setting"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// Parse validates an uploaded document into a payload. This is the upload
// stage of the pipeline.
func (p *Pipeline) Parse(data []byte) (*Payload, error) {
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, pkgerrors.Wrap(ErrPayloadInvalid, err.Error())
	}

	if payload.Version != PayloadVersion {
		return nil, pkgerrors.Wrapf(ErrPayloadVersion, "version %d", payload.Version)
	}

	for _, s := range payload.Settings {
		if s.Key == "" {
			return nil, pkgerrors.Wrap(ErrPayloadInvalid, "setting with empty key")
		}
	}

	return &payload, nil
}

// DetectConflicts lists every incoming key that already exists live with a
// canonically different value. The system flag of the live row is carried
// through so the UI can warn before an elevated overwrite.
func (p *Pipeline) DetectConflicts(db *gorm.DB, payload *Payload) ([]Conflict, error) {
	live, err := p.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot settings")
	}

	conflicts := []Conflict{}

	for _, incoming := range payload.Settings {
		entry, ok := live[incoming.Key]
		if !ok {
			continue
		}

		if settings.Canonical(entry.Type, entry.Value) == settings.Canonical(entry.Type, incoming.Value) {
			continue
		}

		conflicts = append(conflicts, Conflict{
			Key:              incoming.Key,
			Category:         entry.Category,
			IsSystem:         entry.IsSystem,
			ExistingValue:    entry.Value,
			NewValue:         incoming.Value,
			HasValueConflict: true,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Key < conflicts[j].Key })

	return conflicts, nil
}

// Preview summarizes what executing the narrowed selection would touch.
func (p *Pipeline) Preview(db *gorm.DB, payload *Payload, selection Selection) (*PreviewResult, error) {
	live, err := p.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot settings")
	}

	result := &PreviewResult{Categories: []string{}}
	seen := map[string]bool{}

	for _, incoming := range payload.Settings {
		if !selection.Matches(incoming) {
			continue
		}

		result.Total++

		if _, ok := live[incoming.Key]; ok {
			result.ExistingSettings++
		} else {
			result.NewSettings++
		}

		if !seen[incoming.Category] {
			seen[incoming.Category] = true
			result.Categories = append(result.Categories, incoming.Category)
		}
	}

	sort.Strings(result.Categories)

	return result, nil
}

// Execute applies the selected payload settings. Non-conflicting new keys
// are created directly; conflicting keys follow the resolution strategy.
// Keys are processed in sorted order and every per-key failure lands in
// Result.Errors without aborting the rest, unlike Restore's all-or-nothing
// transaction.
func (p *Pipeline) Execute(db *gorm.DB, payload *Payload, selection Selection, resolution Resolution, actor settings.Actor) (*Result, error) {
	selected := make([]ExportedSetting, 0, len(payload.Settings))
	for _, s := range payload.Settings {
		if selection.Matches(s) {
			selected = append(selected, s)
		}
	}
	sort.Slice(selected, func(i, j int) bool { return selected[i].Key < selected[j].Key })

	live, err := p.svc.Snapshot(db)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to snapshot settings")
	}

	if err = p.checkResolution(selected, live, resolution); err != nil {
		return nil, err
	}

	result := &Result{Errors: []KeyError{}}

	for _, incoming := range selected {
		entry, exists := live[incoming.Key]

		switch {
		case !exists:
			p.createKey(db, incoming, actor, result)
		case settings.Canonical(entry.Type, entry.Value) == settings.Canonical(entry.Type, incoming.Value):
			result.Skipped++
		case resolution == ResolutionSkip:
			result.Skipped++
		default:
			p.applyConflict(db, incoming, resolution, actor, result)
		}
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("settings import executed")

	return result, nil
}

// checkResolution requires a valid strategy whenever the selection contains
// at least one value conflict.
func (p *Pipeline) checkResolution(selected []ExportedSetting, live settings.Snapshot, resolution Resolution) error {
	switch resolution {
	case ResolutionSkip, ResolutionOverwrite, ResolutionMerge:
		return nil
	case "":
		for _, incoming := range selected {
			entry, ok := live[incoming.Key]
			if !ok {
				continue
			}

			if settings.Canonical(entry.Type, entry.Value) != settings.Canonical(entry.Type, incoming.Value) {
				return pkgerrors.Wrap(ErrResolutionRequired, incoming.Key)
			}
		}

		return nil
	default:
		return pkgerrors.Wrap(ErrResolutionUnknown, string(resolution))
	}
}

func (p *Pipeline) createKey(db *gorm.DB, incoming ExportedSetting, actor settings.Actor, result *Result) {
	_, err := p.svc.Apply(db, settings.ChangeCommand{
		Key:      incoming.Key,
		NewValue: incoming.Value,
		Actor:    actor,
		Reason:   "imported setting",
		Origin:   models.OriginImport,
		Meta: &settings.Meta{
			Category:    incoming.Category,
			Type:        incoming.Type,
			Description: incoming.Description,
		},
	})
	if err != nil {
		result.Errors = append(result.Errors, KeyError{Key: incoming.Key, Message: err.Error()})
		return
	}

	result.Created++
}

// applyConflict writes a conflicting key per the resolution. Overwrite also
// adopts the incoming display metadata; merge keeps all live metadata.
func (p *Pipeline) applyConflict(db *gorm.DB, incoming ExportedSetting, resolution Resolution, actor settings.Actor, result *Result) {
	_, err := p.svc.Apply(db, settings.ChangeCommand{
		Key:      incoming.Key,
		NewValue: incoming.Value,
		Actor:    actor,
		Reason:   "imported setting (" + string(resolution) + ")",
		Origin:   models.OriginImport,
	})
	if err != nil {
		result.Errors = append(result.Errors, KeyError{Key: incoming.Key, Message: err.Error()})
		return
	}

	if resolution == ResolutionOverwrite {
		_, err = settingctl.UpdateMetadata(db, incoming.Key, incoming.Category, incoming.Type, incoming.Description)
		if err != nil {
			result.Errors = append(result.Errors, KeyError{Key: incoming.Key, Message: err.Error()})
			return
		}
	}

	result.Updated++
}
