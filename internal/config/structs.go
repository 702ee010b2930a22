package config

import (
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Audit     Audit
	Secrets   Secrets
	Backup    Backup
}

// Webserver implement webserver settings.
type Webserver struct {
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	DisableRecover bool   // disable recover middleware
}

// Audit holds change-history settings.
type Audit struct {
	// ImportantKeys lists sensitive setting keys; a trailing ".*" matches a
	// whole namespace (e.g. "security.*"). Changes to these keys are flagged
	// important in the history log.
	ImportantKeys []string

	// Timezone interprets history date-range filters (e.g. "Europe/Berlin").
	// Empty means UTC.
	Timezone string
}

// Secrets holds the encryption settings for encrypted-at-rest values.
type Secrets struct {
	// EncryptionKey is the hex-encoded 32-byte key for value encryption.
	EncryptionKey string
}

// Backup holds backup manager settings.
type Backup struct {
	// MaxNameLength caps the user-supplied backup name. Zero means the
	// default of 255.
	MaxNameLength int
}
