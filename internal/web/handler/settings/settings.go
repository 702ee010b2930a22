// Package settings implements the JSON API for listing and editing settings.
package settings

import (
	"errors"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	settingctl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/setting"
	coresettings "github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Path is the base path for settings routes.
const Path = "/api/settings"

// Service is the settings handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	core      *handler.Core
	validator *validator.Validate
}

// Handler is the settings handler.
var Handler = Service{} //nolint:gochecknoglobals

// Item is one setting in API responses.
type Item struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	IsSystem    bool   `json:"is_system"`
	IsEncrypted bool   `json:"is_encrypted"`
}

// UpdateRequest is the payload for a setting update.
type UpdateRequest struct {
	Value  string `json:"value"`
	Reason string `json:"reason" validate:"max=500"`
}

// Init initializes the settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, core *handler.Core) {
	if app == nil || cfg == nil || db == nil || core == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.core = core
	s.validator = validator.New()

	app.Get(Path, s.List)
	app.Get(Path+"/:key", s.Get)
	app.Put(Path+"/:key", s.Update)
}

// List returns all settings, optionally narrowed to categories
// (?categories=basic,mail), key-sorted.
func (s *Service) List(c *fiber.Ctx) error {
	snapshot, err := s.core.Settings.Snapshot(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to snapshot settings")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	var categories []string
	if raw := c.Query("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	items := make([]Item, 0, len(snapshot))
	for key, entry := range snapshot {
		if len(categories) > 0 && !containsString(categories, entry.Category) {
			continue
		}

		items = append(items, itemFromEntry(key, entry))
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Key < items[j].Key })

	return c.JSON(fiber.Map{"settings": items, "total": len(items)})
}

// Get returns a single setting by key.
func (s *Service) Get(c *fiber.Ctx) error {
	entry, err := s.core.Settings.Get(s.db, c.Params("key"))
	if err != nil {
		if errors.Is(err, settingctl.ErrSettingNotFound) {
			return handler.Error(c, fiber.StatusNotFound, err)
		}

		log.Error().Err(err).Str("key", c.Params("key")).Msg("failed to read setting")

		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(itemFromEntry(c.Params("key"), entry))
}

// Update applies a value change through the settings mutation path. A change
// to the identical value is reported with changed=false and leaves no trace
// in the history.
func (s *Service) Update(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	if err := s.validator.Struct(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	record, err := s.core.Settings.Apply(s.db, coresettings.ChangeCommand{
		Key:      c.Params("key"),
		NewValue: req.Value,
		Actor:    auth.ActorFromCtx(c),
		Reason:   req.Reason,
	})
	if err != nil {
		return s.updateError(c, err)
	}

	return c.JSON(fiber.Map{"changed": record != nil})
}

func (s *Service) updateError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, coresettings.ErrSystemSettingProtected):
		return handler.Error(c, fiber.StatusForbidden, err)
	case errors.Is(err, coresettings.ErrUnknownKey):
		return handler.Error(c, fiber.StatusNotFound, err)
	case errors.Is(err, coresettings.ErrValueInvalid), errors.Is(err, coresettings.ErrKeyEmpty):
		return handler.Error(c, fiber.StatusBadRequest, err)
	default:
		log.Error().Err(err).Str("key", c.Params("key")).Msg("failed to update setting")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}
}

func itemFromEntry(key string, entry coresettings.Entry) Item {
	return Item{
		Key:         key,
		Value:       entry.Value,
		Category:    entry.Category,
		Type:        string(entry.Type),
		Description: entry.Description,
		IsSystem:    entry.IsSystem,
		IsEncrypted: entry.IsEncrypted,
	}
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}

	return false
}
