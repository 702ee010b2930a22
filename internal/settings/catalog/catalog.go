// Package catalog holds the built-in setting definitions the back office
// ships with. The daemon registers them at startup and seeds their defaults
// into the store on first boot.
package catalog

import (
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// New builds a registry with all built-in definitions.
func New() *settings.Registry {
	registry := settings.NewRegistry()

	for _, def := range definitions {
		registry.MustRegister(def)
	}

	return registry
}

var definitions = []settings.Definition{ //nolint:gochecknoglobals
	// basic
	{
		Key: "app.name", Type: models.TypeText, Category: "basic",
		Default:     "GoSettings Admin",
		Description: "Application name shown in the header and page titles",
		Rules:       "max=100",
	},
	{
		Key: "app.tagline", Type: models.TypeText, Category: "basic",
		Description: "Short tagline shown next to the application name",
		Rules:       "max=255",
	},
	{
		Key: "app.description", Type: models.TypeTextarea, Category: "basic",
		Description: "Longer description used in meta tags",
	},
	{
		Key: "app.url", Type: models.TypeURL, Category: "basic",
		Description: "Public base URL of the application",
	},
	{
		Key: "app.timezone", Type: models.TypeText, Category: "basic",
		Default:     "UTC",
		Description: "Default timezone for date display",
	},
	{
		Key: "app.language", Type: models.TypeSelect, Category: "basic",
		Default:     "en",
		Options:     []string{"en", "de", "fr", "es"},
		Description: "Default interface language",
	},

	// appearance
	{
		Key: "appearance.theme", Type: models.TypeSelect, Category: "appearance",
		Default:     "auto",
		Options:     []string{"light", "dark", "auto"},
		Description: "Interface color theme",
	},
	{
		Key: "appearance.accent_color", Type: models.TypeColor, Category: "appearance",
		Default:     "#1f6feb",
		Description: "Accent color for buttons and links",
	},
	{
		Key: "appearance.logo", Type: models.TypeImage, Category: "appearance",
		Description: "Logo image path or URL",
	},
	{
		Key: "appearance.favicon", Type: models.TypeFile, Category: "appearance",
		Description: "Favicon file path",
	},
	{
		Key: "appearance.custom_css", Type: models.TypeCode, Category: "appearance",
		Description: "Custom CSS appended to every page",
	},

	// mail
	{
		Key: "mail.from_name", Type: models.TypeText, Category: "mail",
		Default:     "GoSettings Admin",
		Description: "Sender name for outgoing mail",
	},
	{
		Key: "mail.from_address", Type: models.TypeEmail, Category: "mail",
		Default:     "noreply@example.com",
		Description: "Sender address for outgoing mail",
	},
	{
		Key: "mail.smtp_host", Type: models.TypeText, Category: "mail",
		Description: "SMTP server hostname",
	},
	{
		Key: "mail.smtp_port", Type: models.TypeNumber, Category: "mail",
		Default:     "587",
		Description: "SMTP server port",
	},
	{
		Key: "mail.smtp_username", Type: models.TypeText, Category: "mail",
		Description: "SMTP authentication username",
	},
	{
		Key: "mail.smtp_password", Type: models.TypePassword, Category: "mail",
		Description: "SMTP authentication password",
		IsEncrypted: true,
	},

	// security
	{
		Key: "security.force_https", Type: models.TypeBoolean, Category: "security",
		Default:     "false",
		Description: "Redirect all plain HTTP requests to HTTPS",
		IsSystem:    true,
	},
	{
		Key: "security.session_timeout_minutes", Type: models.TypeNumber, Category: "security",
		Default:     "60",
		Description: "Idle session lifetime in minutes",
		IsSystem:    true,
	},
	{
		Key: "security.password_min_length", Type: models.TypeNumber, Category: "security",
		Default:     "8",
		Description: "Minimum password length for local accounts",
	},
	{
		Key: "security.allowed_origins", Type: models.TypeJSON, Category: "security",
		Default:     "[]",
		Description: "JSON array of allowed CORS origins",
		IsSystem:    true,
	},

	// features
	{
		Key: "features.enabled_modules", Type: models.TypeMultiselect, Category: "features",
		Default:     `["backups","history","transfer"]`,
		Options:     []string{"backups", "history", "transfer", "webhooks"},
		Description: "Back-office modules exposed in the navigation",
	},
	{
		Key: "features.maintenance_mode", Type: models.TypeBoolean, Category: "features",
		Default:     "false",
		Description: "Serve a maintenance page to non-admin visitors",
		IsSystem:    true,
	},
	{
		Key: "features.webhook_url", Type: models.TypeURL, Category: "features",
		Description: "Webhook notified after settings mutations",
	},
	{
		Key: "features.webhook_secret", Type: models.TypePassword, Category: "features",
		Description: "Shared secret for webhook signatures",
		IsEncrypted: true,
		IsSystem:    true,
	},
}
