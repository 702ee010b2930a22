// Package transfer implements the JSON API for the settings export download
// and the staged import: upload with conflict detection, preview, execute.
package transfer

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	coretransfer "github.com/GoSettings-Admin/GoSettings-Admin/internal/transfer"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Path is the base path for transfer routes.
const Path = "/api/transfer"

// Service is the transfer handler service.
type Service struct {
	cfg  *config.Config
	db   *gorm.DB
	core *handler.Core
}

// Handler is the transfer handler.
var Handler = Service{} //nolint:gochecknoglobals

// ImportRequest carries a parsed payload plus the narrowing and resolution
// chosen in the staged import flow.
type ImportRequest struct {
	Payload    coretransfer.Payload   `json:"payload"`
	Selection  coretransfer.Selection `json:"selection"`
	Resolution string                 `json:"resolution"`
}

// Init initializes the transfer handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, core *handler.Core) {
	if app == nil || cfg == nil || db == nil || core == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.core = core

	app.Get(Path+"/export", s.Export)
	app.Post(Path+"/import/upload", s.Upload)
	app.Post(Path+"/import/preview", s.Preview)
	app.Post(Path+"/import/execute", s.Execute)
}

// Export streams a settings export document as a download. Supports
// ?categories=a,b, ?only_changed=, ?include_system=.
func (s *Service) Export(c *fiber.Ctx) error {
	var categories []string
	if raw := c.Query("categories"); raw != "" {
		categories = strings.Split(raw, ",")
	}

	payload, err := s.core.Transfer.Export(s.db, categories, coretransfer.Options{
		OnlyChanged:   c.QueryBool("only_changed"),
		IncludeSystem: c.QueryBool("include_system"),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to export settings")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	doc, err := s.core.Transfer.Document(payload)
	if err != nil {
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)

	return c.Send(doc.Body)
}

// Upload parses an uploaded export document and reports its conflicts against
// the live store. The parsed payload is echoed back for the follow-up
// preview/execute calls.
func (s *Service) Upload(c *fiber.Ctx) error {
	payload, err := s.core.Transfer.Parse(c.Body())
	if err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	conflicts, err := s.core.Transfer.DetectConflicts(s.db, payload)
	if err != nil {
		log.Error().Err(err).Msg("failed to detect import conflicts")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(fiber.Map{
		"payload":   payload,
		"conflicts": conflicts,
	})
}

// Preview summarizes what executing the narrowed import would touch.
func (s *Service) Preview(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	result, err := s.core.Transfer.Preview(s.db, &req.Payload, req.Selection)
	if err != nil {
		log.Error().Err(err).Msg("failed to preview import")
		return handler.Error(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(result)
}

// Execute runs the import. Partial success is normal; per-key failures come
// back in the result, not as an HTTP error.
func (s *Service) Execute(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	result, err := s.core.Transfer.Execute(s.db, &req.Payload, req.Selection,
		coretransfer.Resolution(req.Resolution), auth.ActorFromCtx(c))
	if err != nil {
		switch {
		case errors.Is(err, coretransfer.ErrResolutionRequired):
			return handler.Error(c, fiber.StatusConflict, err)
		case errors.Is(err, coretransfer.ErrResolutionUnknown):
			return handler.Error(c, fiber.StatusBadRequest, err)
		default:
			log.Error().Err(err).Msg("failed to execute import")
			return handler.Error(c, fiber.StatusInternalServerError, err)
		}
	}

	return c.JSON(result)
}
