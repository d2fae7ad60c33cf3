package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio-app/internal/domain/catalog"
	"portfolio-app/internal/domain/settings"
	"portfolio-app/internal/logger"
)

// Open connects to postgres (postgres:// DSNs or key=value form) or sqlite
// ("sqlite:<path>", "file:..." or a *.db path).
func Open(dsn, logLevel string) (*gorm.DB, error) {
	dialector, isSQLite, err := dialectorFor(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.NewGormLogger(logLevel),
		TranslateError: true,
		// category references are enforced in the store
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// one connection keeps ":memory:" databases alive and serializes writers
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, false, fmt.Errorf("empty database url")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return postgres.Open(dsn), false, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite:")), true, nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"):
		return sqlite.Open(dsn), true, nil
	default:
		return nil, false, fmt.Errorf("unsupported database url %q", dsn)
	}
}

// Migrate creates or updates every table the app uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&catalog.Category{},
		&catalog.Collection{},
		&catalog.AnalyticsEvent{},
		&settings.Setting{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// OpenMemory is an empty, migrated in-memory sqlite database.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open("sqlite::memory:", "silent")
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
