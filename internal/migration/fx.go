package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/docbrief/docbrief/internal/config"
	subscriptiondomain "github.com/docbrief/docbrief/internal/subscription/domain"
	summarydomain "github.com/docbrief/docbrief/internal/summary/domain"
	usagedomain "github.com/docbrief/docbrief/internal/usage/domain"
	userdomain "github.com/docbrief/docbrief/internal/user/domain"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite and mysql installs are dev setups, let gorm own the schema.
		return conn.AutoMigrate(
			&userdomain.User{},
			&subscriptiondomain.Subscription{},
			&usagedomain.UsageRecord{},
			&summarydomain.SummaryRecord{},
		)
	}),
)
