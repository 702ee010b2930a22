// Package daemon bootstraps the application: database, cipher, definition
// registry, domain engines, seeding and the web service.
package daemon

import (
	"encoding/hex"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/backup"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/dsn"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/history"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/restore"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/secrets"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings/catalog"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/transfer"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)

	go d.webService.WaitShutdown()

	return d.webService.Start(addr)
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	db, err := openDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Setting{},
		&models.Backup{},
		&models.ChangeRecord{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	svc := settings.NewService(buildCipher(cfg), catalog.New(), cfg.Audit)

	seed(cfg, db, svc)

	backups := backup.NewManager(svc, cfg.Backup.MaxNameLength)

	core := &handler.Core{
		Settings: svc,
		Backups:  backups,
		Restore:  restore.NewEngine(svc, backups),
		History:  history.NewLog(svc, cfg.AuditLocation()),
		Transfer: transfer.NewPipeline(svc),
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, core, auth.NewService(db)),
	}
}

// openDB opens the configured database engine.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DB.GormEngine {
	case dsn.EnginePostgres:
		dialector = gormpostgres.Open(dsn.Create(cfg))
	case dsn.EngineSQLite:
		dialector = sqlite.Open(dsn.Create(cfg))
	default:
		dialector = gormmysql.Open(dsn.Create(cfg))
	}

	return gorm.Open(dialector, &gorm.Config{})
}

// buildCipher decodes the configured encryption key. Without a key, encrypted
// settings are stored as plaintext and a warning is logged.
func buildCipher(cfg *config.Config) secrets.Cipher {
	if cfg.Secrets.EncryptionKey == "" {
		log.Warn().Msg("no encryption key configured: encrypted settings will be stored in plaintext")
		return secrets.Noop{}
	}

	key, err := hex.DecodeString(cfg.Secrets.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("encryption key is not valid hex")
		return secrets.Noop{}
	}

	box, err := secrets.NewBox(key)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid encryption key")
		return secrets.Noop{}
	}

	return box
}
