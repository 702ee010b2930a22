// Package handler holds the pieces shared by all web handler packages: the
// bundle of domain engines the handlers operate on and small request helpers.
package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/backup"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/history"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/restore"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/transfer"
)

// ErrNilDepsFatalLogMsg is logged fatally when a handler is initialized with
// nil dependencies.
const ErrNilDepsFatalLogMsg = "handler init: app, config, db and core must not be nil"

// DefaultPageSize is the default number of items per page.
const DefaultPageSize = 25

// Core bundles the domain engines handlers call into.
type Core struct {
	Settings *settings.Service
	Backups  *backup.Manager
	Restore  *restore.Engine
	History  *history.Log
	Transfer *transfer.Pipeline
}

// Pagination parses and normalizes page and per_page query parameters.
func Pagination(c *fiber.Ctx) (page, perPage int) {
	page = c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	perPage = c.QueryInt("per_page", DefaultPageSize)
	if perPage < 1 || perPage > 100 {
		perPage = DefaultPageSize
	}

	return page, perPage
}

// Error renders a JSON error response.
func Error(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
