package settings

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	changectl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/change"
	settingctl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/setting"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/secrets"
)

// RedactedValue replaces encrypted values in the audit trail. Plaintext of
// encrypted settings never reaches a change record.
const RedactedValue = "[encrypted]"

// Service is the single mutation path for settings. It owns encryption at
// the persistence boundary and the audit invariant: exactly one change
// record per value mutation, through any engine.
type Service struct {
	cipher        secrets.Cipher
	registry      *Registry
	importantKeys []string
}

// NewService wires the mutation path with its cipher, definition registry
// and the configured sensitive-key list.
func NewService(cipher secrets.Cipher, registry *Registry, audit config.Audit) *Service {
	if cipher == nil {
		cipher = secrets.Noop{}
	}
	if registry == nil {
		registry = NewRegistry()
	}

	return &Service{
		cipher:        cipher,
		registry:      registry,
		importantKeys: audit.ImportantKeys,
	}
}

// Registry exposes the definition registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Apply performs one setting mutation: validate, guard system settings,
// encrypt if flagged, upsert the row and append exactly one change record,
// all in one transaction. A mutation to the canonically identical value is a
// no-op and returns (nil, nil) without touching the store or the trail.
func (s *Service) Apply(db *gorm.DB, cmd ChangeCommand) (*models.ChangeRecord, error) {
	if cmd.Key == "" {
		return nil, ErrKeyEmpty
	}
	if cmd.Origin == "" {
		cmd.Origin = models.OriginDirect
	}

	existing, err := settingctl.Get(db, cmd.Key)
	if err != nil && !errors.Is(err, settingctl.ErrSettingNotFound) {
		return nil, errors.Wrap(err, "failed to read setting")
	}

	def, hasDef := s.registry.Lookup(cmd.Key)

	meta, err := s.resolveMeta(existing, def, hasDef, cmd.Meta)
	if err != nil {
		return nil, err
	}

	if meta.IsSystem && !cmd.Actor.CanEditSystem {
		return nil, errors.Wrap(ErrSystemSettingProtected, cmd.Key)
	}

	if hasDef {
		if err = s.registry.Validate(def, cmd.NewValue); err != nil {
			return nil, err
		}
	}

	var oldRaw string
	if existing != nil {
		oldEntry, entryErr := s.entryFromRow(existing)
		if entryErr != nil {
			return nil, entryErr
		}
		oldRaw = oldEntry.Value

		if Canonical(meta.Type, oldRaw) == Canonical(meta.Type, cmd.NewValue) {
			return nil, nil
		}
	}

	var record *models.ChangeRecord

	err = db.Transaction(func(tx *gorm.DB) error {
		if txErr := s.writeRow(tx, existing, meta, cmd); txErr != nil {
			return txErr
		}

		record = s.buildRecord(existing != nil, oldRaw, meta, cmd)

		_, txErr := changectl.Append(tx, record)
		if txErr != nil {
			return errors.Wrap(txErr, "failed to append change record")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Get returns the decrypted logical entry for one key.
func (s *Service) Get(db *gorm.DB, key string) (Entry, error) {
	row, err := settingctl.Get(db, key)
	if err != nil {
		return Entry{}, err
	}

	return s.entryFromRow(row)
}

// Snapshot captures the full settings store as a deep, independent copy with
// all values decrypted to their logical form.
func (s *Service) Snapshot(db *gorm.DB) (Snapshot, error) {
	rows, err := settingctl.GetAll(db)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list settings")
	}

	snapshot := make(Snapshot, len(rows))

	for i := range rows {
		entry, entryErr := s.entryFromRow(&rows[i])
		if entryErr != nil {
			return nil, entryErr
		}

		snapshot[rows[i].Key] = entry
	}

	return snapshot, nil
}

// SealSnapshot serializes a snapshot and encrypts the whole payload. Snapshot
// entries hold logical plaintext values, so a snapshot leaving memory passes
// through the cipher like any encrypted row.
func (s *Service) SealSnapshot(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize snapshot")
	}

	sealed, err := s.cipher.Encrypt(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt snapshot")
	}

	return sealed, nil
}

// OpenSnapshot decrypts and deserializes a payload produced by SealSnapshot.
func (s *Service) OpenSnapshot(sealed []byte) (Snapshot, error) {
	data, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt snapshot")
	}

	var snapshot Snapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, "corrupt snapshot payload")
	}

	return snapshot, nil
}

// SeedDefaults creates a row for every registered definition the store does
// not have yet. Seeding is not a mutation of an existing value, so no change
// records are written.
func (s *Service) SeedDefaults(db *gorm.DB) error {
	for _, def := range s.registry.All() {
		_, err := settingctl.Get(db, def.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, settingctl.ErrSettingNotFound) {
			return errors.Wrap(err, "failed to read setting")
		}

		value := []byte(def.Default)
		if def.IsEncrypted {
			value, err = s.cipher.Encrypt(value)
			if err != nil {
				return errors.Wrapf(err, "failed to encrypt default for %s", def.Key)
			}
		}

		_, err = settingctl.Create(db, &models.Setting{
			Key:         def.Key,
			Value:       value,
			Category:    def.Category,
			Type:        def.Type,
			Description: def.Description,
			IsEncrypted: def.IsEncrypted,
			IsSystem:    def.IsSystem,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to seed %s", def.Key)
		}
	}

	return nil
}

// IsImportant reports whether a key is on the configured sensitive list.
// A trailing ".*" entry matches the whole namespace.
func (s *Service) IsImportant(key string) bool {
	for _, pattern := range s.importantKeys {
		if pattern == key {
			return true
		}

		if prefix, ok := strings.CutSuffix(pattern, ".*"); ok && strings.HasPrefix(key, prefix+".") {
			return true
		}
	}

	return false
}

// resolveMeta decides the metadata governing this mutation: the live row
// wins, then the registry definition, then caller-supplied metadata.
func (s *Service) resolveMeta(existing *models.Setting, def Definition, hasDef bool, m *Meta) (Meta, error) {
	switch {
	case existing != nil:
		return Meta{
			Category:    existing.Category,
			Type:        existing.Type,
			Description: existing.Description,
			IsSystem:    existing.IsSystem,
			IsEncrypted: existing.IsEncrypted,
		}, nil
	case hasDef:
		return Meta{
			Category:    def.Category,
			Type:        def.Type,
			Description: def.Description,
			IsSystem:    def.IsSystem,
			IsEncrypted: def.IsEncrypted,
		}, nil
	case m != nil:
		meta := *m
		if meta.Type == "" {
			meta.Type = models.TypeText
		}

		return meta, nil
	default:
		return Meta{}, errors.Wrap(ErrUnknownKey, "no definition or metadata")
	}
}

// writeRow encrypts if flagged and creates or updates the settings row.
func (s *Service) writeRow(tx *gorm.DB, existing *models.Setting, meta Meta, cmd ChangeCommand) error {
	stored := []byte(cmd.NewValue)

	if meta.IsEncrypted {
		encrypted, err := s.cipher.Encrypt(stored)
		if err != nil {
			return errors.Wrapf(err, "failed to encrypt %s", cmd.Key)
		}

		stored = encrypted
	}

	if existing != nil {
		_, err := settingctl.SetValue(tx, cmd.Key, stored)

		return errors.Wrap(err, "failed to update setting")
	}

	_, err := settingctl.Create(tx, &models.Setting{
		Key:         cmd.Key,
		Value:       stored,
		Category:    meta.Category,
		Type:        meta.Type,
		Description: meta.Description,
		IsEncrypted: meta.IsEncrypted,
		IsSystem:    meta.IsSystem,
	})

	return errors.Wrap(err, "failed to create setting")
}

// buildRecord assembles the audit entry for this mutation. Encrypted values
// are redacted on both sides.
func (s *Service) buildRecord(existed bool, oldRaw string, meta Meta, cmd ChangeCommand) *models.ChangeRecord {
	oldValue := []byte(oldRaw)
	newValue := []byte(cmd.NewValue)

	if meta.IsEncrypted {
		newValue = []byte(RedactedValue)
		if existed {
			oldValue = []byte(RedactedValue)
		}
	}

	if !existed {
		oldValue = nil
	}

	return &models.ChangeRecord{
		SettingKey:  cmd.Key,
		OldValue:    oldValue,
		NewValue:    newValue,
		UserID:      cmd.Actor.UserID,
		UserName:    cmd.Actor.DisplayName,
		IPAddress:   cmd.Actor.IPAddress,
		UserAgent:   cmd.Actor.UserAgent,
		Reason:      cmd.Reason,
		Origin:      cmd.Origin,
		IsImportant: s.IsImportant(cmd.Key),
	}
}

// entryFromRow decrypts a stored row into its logical entry.
func (s *Service) entryFromRow(row *models.Setting) (Entry, error) {
	value := row.Value

	if row.IsEncrypted {
		decrypted, err := s.cipher.Decrypt(row.Value)
		if err != nil {
			return Entry{}, errors.Wrapf(err, "failed to decrypt %s", row.Key)
		}

		value = decrypted
	}

	return Entry{
		Value:       string(value),
		Category:    row.Category,
		Type:        row.Type,
		Description: row.Description,
		IsSystem:    row.IsSystem,
		IsEncrypted: row.IsEncrypted,
	}, nil
}
