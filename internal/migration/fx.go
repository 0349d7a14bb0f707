package migration

import (
	"github.com/reelforge/reelforge/internal/config"
	"github.com/reelforge/reelforge/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite/mysql dev environments skip versioned migrations and
			// derive the schema from the domain models directly.
			if err := seed.AutoMigrate(conn); err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureCatalog(conn)
		}
		return nil
	}),
)
