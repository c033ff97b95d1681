package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/internal/migrations"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects to the configured driver. SQLite is meant for local runs and
// tests; production uses PostgreSQL.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if driver == "sqlite" {
		// One writer keeps SQLite from returning "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	return db, nil
}

// Connect opens the database described by cfg and stores it in DB.
func Connect(cfg *config.Config) error {
	db, err := Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	DB = db
	logger.Info().Str("driver", cfg.DatabaseDriver).Msg("Connected to database")
	return nil
}

// Migrate applies pending schema migrations.
func Migrate(db *gorm.DB) error {
	ran, err := migrations.NewMigrator(db).Run()
	if err != nil {
		return err
	}
	logger.Info().Strs("applied", ran).Msg("Database migrations complete")
	return nil
}

// Ping reports whether the database answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
