// Package login implements the credential check endpoint. The API itself is
// authenticated per request with Basic credentials; this endpoint lets the UI
// verify a login and learn the account's privileges up front.
package login

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Path is the login route.
const Path = "/api/login"

// Service is the login handler service.
type Service struct {
	cfg       *config.Config
	db        *gorm.DB
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Request is the login payload.
type Request struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authSvc *auth.Service) {
	if app == nil || cfg == nil || db == nil || authSvc == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.db = db
	s.auth = authSvc
	s.validator = validator.New()

	app.Post(Path, s.Post)
}

// Post verifies a username and password.
func (s *Service) Post(c *fiber.Ctx) error {
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	if err := s.validator.Struct(&req); err != nil {
		return handler.Error(c, fiber.StatusBadRequest, err)
	}

	user, err := s.auth.Authenticate(req.Username, req.Password)
	if err != nil {
		log.Warn().Str("username", req.Username).Msg("login rejected")

		// same response for unknown user and wrong password
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	return c.JSON(fiber.Map{
		"user_id":         user.ID,
		"username":        user.Username,
		"display_name":    user.DisplayName,
		"can_edit_system": user.CanEditSystem,
	})
}
