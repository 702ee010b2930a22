// Package dashboard implements the combined statistics endpoint the landing
// page of the back office is built from.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/history"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Path is the base path for the dashboard route.
const Path = "/api/dashboard"

// Service is the dashboard handler service.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	core *handler.Core
}

// Handler is the dashboard handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the dashboard handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, core *handler.Core) {
	if app == nil || cfg == nil || db == nil || core == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.core = core

	app.Get(Path, s.Get)
}

// Get aggregates settings, backup and history statistics in one response.
func (s *Service) Get(c *fiber.Ctx) error {
	snapshot, err := s.core.Settings.Snapshot(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to snapshot settings")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	backupStats, err := s.core.Backups.ComputeStats(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to compute backup stats")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	historyStats, err := s.core.History.ComputeStats(s.db, history.Filter{})
	if err != nil {
		log.Error().Err(err).Msg("failed to compute history stats")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	categories := map[string]int{}
	for _, entry := range snapshot {
		categories[entry.Category]++
	}

	return c.JSON(fiber.Map{
		"settings": fiber.Map{
			"total":      len(snapshot),
			"categories": categories,
		},
		"backups": backupStats,
		"history": historyStats,
		"title":   s.cfg.Title,
	})
}
