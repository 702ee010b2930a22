// Package backups implements the JSON API for backup management: listing,
// creation, deletion, stats and restore preview/apply.
package backups

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/backup"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	backupctl "github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/backup"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/restore"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Path is the base path for backup routes.
const Path = "/api/backups"

// Service is the backups handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	core      *handler.Core
	validator *validator.Validate
}

// Handler is the backups handler.
var Handler = Service{} //nolint:gochecknoglobals

// CreateRequest is the payload for creating a backup.
type CreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"max=500"`
	BackupType  string `json:"backup_type" validate:"omitempty,oneof=manual scheduled"`
}

// Item is one backup in list responses; the snapshot payload itself is not
// shipped, only its size.
type Item struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	BackupType  string `json:"backup_type"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   string `json:"created_at"`
	SizeBytes   int    `json:"size_bytes"`
}

// Init initializes the backups handler.
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
	app.Get(Path+"/stats", s.Stats)
	app.Post(Path, s.Create)
	app.Delete(Path+"/:id", s.Delete)
	app.Get(Path+"/:id/preview", s.Preview)
	app.Post(Path+"/:id/restore", s.Restore)
}

// List returns one page of backups. Supports ?search=, ?sort_by=,
// ?sort_direction=, ?page=, ?per_page=.
func (s *Service) List(c *fiber.Ctx) error {
	page, perPage := handler.Pagination(c)

	rows, total, err := s.core.Backups.List(s.db, backup.Filter{
		Search:        c.Query("search"),
		SortBy:        c.Query("sort_by"),
		SortDirection: c.Query("sort_direction"),
	}, page, perPage)
	if err != nil {
		log.Error().Err(err).Msg("failed to list backups")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	items := make([]Item, 0, len(rows))
	for i := range rows {
		items = append(items, itemFromModel(&rows[i]))
	}

	return c.JSON(fiber.Map{
		"backups":  items,
		"total":    total,
		"page":     page,
		"per_page": perPage,
	})
}

// Stats returns aggregate backup statistics.
func (s *Service) Stats(c *fiber.Ctx) error {
	stats, err := s.core.Backups.ComputeStats(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to compute backup stats")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(stats)
}

// Create snapshots the current settings into a new backup.
func (s *Service) Create(c *fiber.Ctx) error {
	var req CreateRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	if err := s.validator.Struct(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	actor := auth.ActorFromCtx(c)

	b, err := s.core.Backups.Create(s.db, req.Name, req.Description,
		models.BackupType(req.BackupType), actor.DisplayName)
	if err != nil {
		if errors.Is(err, backup.ErrNameEmpty) || errors.Is(err, backup.ErrNameTooLong) {
			return handler.Error(c, fiber.StatusBadRequest, err)
		}

		log.Error().Err(err).Msg("failed to create backup")

		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.Status(fiber.StatusCreated).JSON(itemFromModel(b))
}

// Delete removes a backup permanently.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return handler.Error(c, fiber.StatusBadRequest, backupctl.ErrBackupNotFound)
	}

	if err := s.core.Backups.Delete(s.db, uint64(id)); err != nil {
		if errors.Is(err, backupctl.ErrBackupNotFound) {
			return handler.Error(c, fiber.StatusNotFound, err)
		}

		log.Error().Err(err).Int("backup_id", id).Msg("failed to delete backup")

		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Preview reports what restoring the backup would change.
func (s *Service) Preview(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return handler.Error(c, fiber.StatusBadRequest, backupctl.ErrBackupNotFound)
	}

	preview, err := s.core.Restore.Preview(s.db, uint64(id))
	if err != nil {
		if errors.Is(err, backupctl.ErrBackupNotFound) {
			return handler.Error(c, fiber.StatusNotFound, err)
		}

		log.Error().Err(err).Int("backup_id", id).Msg("failed to preview restore")

		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(preview)
}

// Restore applies the backup snapshot. All-or-nothing: any failing key rolls
// the whole restore back.
func (s *Service) Restore(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return handler.Error(c, fiber.StatusBadRequest, backupctl.ErrBackupNotFound)
	}

	result, err := s.core.Restore.Restore(s.db, uint64(id), auth.ActorFromCtx(c))
	if err != nil {
		switch {
		case errors.Is(err, backupctl.ErrBackupNotFound):
			return handler.Error(c, fiber.StatusNotFound, err)
		case errors.Is(err, restore.ErrRestoreFailed):
			return handler.Error(c, fiber.StatusConflict, err)
		default:
			log.Error().Err(err).Int("backup_id", id).Msg("failed to restore backup")
			return handler.Error(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.JSON(result)
}

func itemFromModel(b *models.Backup) Item {
	return Item{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		BackupType:  string(b.BackupType),
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		SizeBytes:   len(b.SettingsData),
	}
}
