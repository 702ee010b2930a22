package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/settings"
)

// seed fills an empty installation: defaults for every registered setting
// definition and, when no account exists yet, the initial admin user.
// Seeding is idempotent and writes no change records.
func seed(_ *config.Config, db *gorm.DB, svc *settings.Service) {
	if err := svc.SeedDefaults(db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default settings")
		return
	}

	authSvc := auth.NewService(db)

	count, err := authSvc.CountUsers()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to count users")
		return
	}

	if count == 0 {
		// change this password after first login
		if _, err := authSvc.CreateUser("admin", "Administrator", "changeme", true); err != nil {
			log.Fatal().Err(err).Msg("failed to create default admin user")
			return
		}

		log.Info().Msg("created default admin user (username: admin)")
	}
}
