package transfer

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{}, &models.ChangeRecord{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func testFixture(t *testing.T) (*gorm.DB, *settings.Service, *Pipeline) {
	t.Helper()

	db := setupTestDB(t)

	registry := settings.NewRegistry()
	registry.MustRegister(settings.Definition{
		Key: "app.name", Type: models.TypeText, Category: "basic", Default: "My Site",
	})
	registry.MustRegister(settings.Definition{
		Key: "app.timezone", Type: models.TypeText, Category: "basic", Default: "UTC",
	})
	registry.MustRegister(settings.Definition{
		Key: "mail.from_address", Type: models.TypeEmail, Category: "mail",
		Default: "noreply@example.com",
	})
	registry.MustRegister(settings.Definition{
		Key: "security.force_https", Type: models.TypeBoolean, Category: "security",
		Default: "false", IsSystem: true,
	})

	svc := settings.NewService(nil, registry, config.Audit{})
	require.NoError(t, svc.SeedDefaults(db))

	return db, svc, NewPipeline(svc)
}

func admin() settings.Actor {
	return settings.Actor{UserID: "1", DisplayName: "Alice Admin", CanEditSystem: true}
}

func TestExportFilters(t *testing.T) {
	db, svc, pipeline := testFixture(t)

	_, err := svc.Apply(db, settings.ChangeCommand{Key: "app.name", NewValue: "Renamed", Actor: admin()})
	require.NoError(t, err)

	t.Run("default excludes system settings", func(t *testing.T) {
		payload, err := pipeline.Export(db, nil, Options{})
		require.NoError(t, err)
		require.Len(t, payload.Settings, 3)
		for _, s := range payload.Settings {
			assert.NotEqual(t, "security.force_https", s.Key)
		}
	})

	t.Run("include system", func(t *testing.T) {
		payload, err := pipeline.Export(db, nil, Options{IncludeSystem: true})
		require.NoError(t, err)
		assert.Len(t, payload.Settings, 4)
	})

	t.Run("by category", func(t *testing.T) {
		payload, err := pipeline.Export(db, []string{"mail"}, Options{})
		require.NoError(t, err)
		require.Len(t, payload.Settings, 1)
		assert.Equal(t, "mail.from_address", payload.Settings[0].Key)
	})

	t.Run("only changed", func(t *testing.T) {
		payload, err := pipeline.Export(db, nil, Options{OnlyChanged: true})
		require.NoError(t, err)
		require.Len(t, payload.Settings, 1)
		assert.Equal(t, "app.name", payload.Settings[0].Key)
		assert.Equal(t, "Renamed", payload.Settings[0].Value)
	})

	t.Run("key sorted", func(t *testing.T) {
		payload, err := pipeline.Export(db, nil, Options{IncludeSystem: true})
		require.NoError(t, err)
		keys := make([]string, len(payload.Settings))
		for i, s := range payload.Settings {
			keys[i] = s.Key
		}
		assert.Equal(t, []string{"app.name", "app.timezone", "mail.from_address", "security.force_https"}, keys)
	})
}

func TestDocument(t *testing.T) {
	_, _, pipeline := testFixture(t)

	payload := &Payload{Version: PayloadVersion}
	doc, err := pipeline.Document(payload)
	require.NoError(t, err)

	assert.Equal(t, "application/json", doc.ContentType)
	assert.Regexp(t, `^settings-export-\d{8}-\d{6}\.json$`, doc.Filename)
	assert.Contains(t, string(doc.Body), `"version": 1`)
}

func TestParse(t *testing.T) {
	_, _, pipeline := testFixture(t)

	t.Run("valid", func(t *testing.T) {
		payload, err := pipeline.Parse([]byte(`{"version":1,"settings":[{"key":"app.name","value":"X"}]}`))
		require.NoError(t, err)
		require.Len(t, payload.Settings, 1)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := pipeline.Parse([]byte("not json"))
		require.ErrorIs(t, err, ErrPayloadInvalid)
	})

	t.Run("wrong version", func(t *testing.T) {
		_, err := pipeline.Parse([]byte(`{"version":99,"settings":[]}`))
		require.ErrorIs(t, err, ErrPayloadVersion)
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := pipeline.Parse([]byte(`{"version":1,"settings":[{"key":"","value":"X"}]}`))
		require.ErrorIs(t, err, ErrPayloadInvalid)
	})
}

func TestDetectConflicts(t *testing.T) {
	db, _, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{Key: "app.timezone", Value: "Europe/Berlin", Category: "basic", Type: models.TypeText},
			{Key: "app.name", Value: "Incoming", Category: "basic", Type: models.TypeText},
			{Key: "app.tagline", Value: "brand new", Category: "basic", Type: models.TypeText},
			{Key: "mail.from_address", Value: "noreply@example.com", Category: "mail", Type: models.TypeEmail},
		},
	}

	conflicts, err := pipeline.DetectConflicts(db, payload)
	require.NoError(t, err)

	// new keys and canonically equal values are not conflicts; output is key-sorted
	require.Len(t, conflicts, 2)
	assert.Equal(t, "app.name", conflicts[0].Key)
	assert.Equal(t, "My Site", conflicts[0].ExistingValue)
	assert.Equal(t, "Incoming", conflicts[0].NewValue)
	assert.Equal(t, "app.timezone", conflicts[1].Key)
}

func TestPreviewSelection(t *testing.T) {
	db, _, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{Key: "app.name", Value: "Incoming", Category: "basic"},
			{Key: "app.tagline", Value: "brand new", Category: "basic"},
			{Key: "mail.from_address", Value: "x@example.com", Category: "mail"},
		},
	}

	preview, err := pipeline.Preview(db, payload, Selection{Categories: []string{"basic"}})
	require.NoError(t, err)
	assert.Equal(t, 2, preview.Total)
	assert.Equal(t, 1, preview.NewSettings)
	assert.Equal(t, 1, preview.ExistingSettings)
	assert.Equal(t, []string{"basic"}, preview.Categories)
}

func TestExecuteResolutionRequired(t *testing.T) {
	db, _, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{Key: "app.name", Value: "Incoming", Category: "basic", Type: models.TypeText},
		},
	}

	_, err := pipeline.Execute(db, payload, Selection{}, "", admin())
	require.ErrorIs(t, err, ErrResolutionRequired)

	_, err = pipeline.Execute(db, payload, Selection{}, "clobber", admin())
	require.ErrorIs(t, err, ErrResolutionUnknown)
}

func TestExecuteNoConflictNeedsNoResolution(t *testing.T) {
	db, svc, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{Key: "app.tagline", Value: "brand new", Category: "basic", Type: models.TypeText},
		},
	}

	result, err := pipeline.Execute(db, payload, Selection{}, "", admin())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)

	entry, err := svc.Get(db, "app.tagline")
	require.NoError(t, err)
	assert.Equal(t, "brand new", entry.Value)
	assert.Equal(t, "basic", entry.Category)

	// the creation is audited with the import origin
	var rec models.ChangeRecord
	require.NoError(t, db.Where("setting_key = ?", "app.tagline").First(&rec).Error)
	assert.Equal(t, models.OriginImport, rec.Origin)
}

func TestExecuteSkip(t *testing.T) {
	db, svc, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{Key: "app.name", Value: "Incoming", Category: "basic", Type: models.TypeText},
		},
	}

	result, err := pipeline.Execute(db, payload, Selection{}, ResolutionSkip, admin())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Updated)

	entry, err := svc.Get(db, "app.name")
	require.NoError(t, err)
	assert.Equal(t, "My Site", entry.Value, "skip keeps the live value")
}

func TestExecuteOverwriteAdoptsMetadata(t *testing.T) {
	db, svc, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{
				Key: "app.name", Value: "Incoming", Category: "branding",
				Type: models.TypeText, Description: "imported description",
			},
		},
	}

	result, err := pipeline.Execute(db, payload, Selection{}, ResolutionOverwrite, admin())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, result.Errors)

	entry, err := svc.Get(db, "app.name")
	require.NoError(t, err)
	assert.Equal(t, "Incoming", entry.Value)
	assert.Equal(t, "branding", entry.Category)
	assert.Equal(t, "imported description", entry.Description)
}

func TestExecuteMergeKeepsMetadata(t *testing.T) {
	db, svc, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{
				Key: "app.name", Value: "Incoming", Category: "branding",
				Type: models.TypeText, Description: "imported description",
			},
		},
	}

	result, err := pipeline.Execute(db, payload, Selection{}, ResolutionMerge, admin())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	entry, err := svc.Get(db, "app.name")
	require.NoError(t, err)
	assert.Equal(t, "Incoming", entry.Value, "merge takes the incoming value")
	assert.Equal(t, "basic", entry.Category, "merge keeps the live metadata")
	assert.Empty(t, entry.Description)
}

func TestExecutePartialFailure(t *testing.T) {
	db, svc, pipeline := testFixture(t)

	payload := &Payload{
		Version: PayloadVersion,
		Settings: []ExportedSetting{
			{Key: "app.name", Value: "Incoming", Category: "basic", Type: models.TypeText},
			{Key: "security.force_https", Value: "true", Category: "security", Type: models.TypeBoolean},
		},
	}

	// an unprivileged actor fails on the system key but the rest still lands
	result, err := pipeline.Execute(db, payload, Selection{}, ResolutionOverwrite,
		settings.Actor{UserID: "2", DisplayName: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "security.force_https", result.Errors[0].Key)

	entry, err := svc.Get(db, "app.name")
	require.NoError(t, err)
	assert.Equal(t, "Incoming", entry.Value)

	entry, err = svc.Get(db, "security.force_https")
	require.NoError(t, err)
	assert.Equal(t, "false", entry.Value)
}

func TestExportImportRoundTripIsNoOp(t *testing.T) {
	db, _, pipeline := testFixture(t)

	exported, err := pipeline.Export(db, nil, Options{IncludeSystem: true})
	require.NoError(t, err)

	doc, err := pipeline.Document(exported)
	require.NoError(t, err)

	payload, err := pipeline.Parse(doc.Body)
	require.NoError(t, err)

	conflicts, err := pipeline.DetectConflicts(db, payload)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	result, err := pipeline.Execute(db, payload, Selection{}, "", admin())
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
	assert.Equal(t, 4, result.Skipped)

	// nothing touched the audit trail
	var count int64
	db.Model(&models.ChangeRecord{}).Count(&count)
	assert.Zero(t, count)
}
