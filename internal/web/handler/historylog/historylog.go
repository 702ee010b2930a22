// Package historylog implements the JSON API over the change history log.
package historylog

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	changectl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/change"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/history"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Path is the base path for history routes.
const Path = "/api/history"

// Service is the history handler service.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	core *handler.Core
}

// Handler is the history handler.
var Handler = Service{} //nolint:gochecknoglobals

// Item is one change record in API responses.
type Item struct {
	ID          uint64 `json:"id"`
	SettingKey  string `json:"setting_key"`
	OldValue    string `json:"old_value,omitempty"`
	NewValue    string `json:"new_value"`
	UserID      string `json:"user_id,omitempty"`
	UserName    string `json:"user_name,omitempty"`
	IPAddress   string `json:"ip_address,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Origin      string `json:"origin"`
	IsImportant bool   `json:"is_important"`
	CreatedAt   string `json:"created_at"`
}

// Init initializes the history handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, core *handler.Core) {
	if app == nil || cfg == nil || db == nil || core == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.core = core

	app.Get(Path, s.List)
	app.Get(Path+"/stats", s.Stats)
	app.Post(Path+"/:id/restore", s.RestoreToValue)
}

// List returns one page of change records, newest first. All filters are
// conjunctive: ?search=, ?category=, ?user_id=, ?important_only=,
// ?date_from=, ?date_to= (YYYY-MM-DD, inclusive, audit timezone).
func (s *Service) List(c *fiber.Ctx) error {
	page, perPage := handler.Pagination(c)

	records, total, err := s.core.History.Query(s.db, filterFromQuery(c), page, perPage)
	if err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	items := make([]Item, 0, len(records))
	for i := range records {
		items = append(items, itemFromModel(&records[i]))
	}

	return c.JSON(fiber.Map{
		"changes":  items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Stats returns aggregate history statistics consistent with List's filter.
func (s *Service) Stats(c *fiber.Ctx) error {
	stats, err := s.core.History.ComputeStats(s.db, filterFromQuery(c))
	if err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	return c.JSON(stats)
}

// RestoreToValue reapplies the value a setting had before the given change.
func (s *Service) RestoreToValue(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return handler.Error(c, fiber.StatusBadRequest, changectl.ErrChangeNotFound)
	}

	record, err := s.core.History.RestoreToValue(s.db, uint64(id), auth.ActorFromCtx(c))
	if err != nil {
		switch {
		case errors.Is(err, changectl.ErrChangeNotFound):
			return handler.Error(c, fiber.StatusNotFound, err)
		case errors.Is(err, history.ErrRestoreOfRestore), errors.Is(err, history.ErrRestoreOfRedacted):
			return handler.Error(c, fiber.StatusConflict, err)
		case errors.Is(err, settings.ErrSystemSettingProtected):
			return handler.Error(c, fiber.StatusForbidden, err)
		default:
			log.Error().Err(err).Int("change_id", id).Msg("failed to restore value")
			return handler.Error(c, fiber.StatusInternalServerError, err)
		}
	}

	if record == nil {
		// the setting already holds that value
		return c.JSON(fiber.Map{"changed": false})
	}

	return c.JSON(fiber.Map{"changed": true, "change": itemFromModel(record)})
}

func filterFromQuery(c *fiber.Ctx) history.Filter {
	return history.Filter{
		Search:        c.Query("search"),
		Category:      c.Query("category"),
		UserID:        c.Query("user_id"),
		ImportantOnly: c.QueryBool("important_only"),
		DateFrom:      c.Query("date_from"),
		DateTo:        c.Query("date_to"),
	}
}

func itemFromModel(rec *models.ChangeRecord) Item {
	return Item{
		ID:          rec.ID,
		SettingKey:  rec.SettingKey,
		OldValue:    string(rec.OldValue),
		NewValue:    string(rec.NewValue),
		UserID:      rec.UserID,
		UserName:    rec.UserName,
		IPAddress:   rec.IPAddress,
		Reason:      rec.Reason,
		Origin:      string(rec.Origin),
		IsImportant: rec.IsImportant,
		CreatedAt:   rec.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
