package dbhelper

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wardrobeapi/config"
)

// SetupDB opens the wardrobe database and brings its schema up to date.
// Opening an existing database is safe; applied migrations are skipped.
func SetupDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN)
	default:
		dsn, err := sqliteDSN(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == "sqlite" {
		// one writer keeps single-record operations atomic without lock errors
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.DBDriver).Int("schema_version", LatestSchemaVersion()).Msg("database ready")
	return db, nil
}

func sqliteDSN(path string) (string, error) {
	if path == ":memory:" {
		return "file::memory:?_foreign_keys=1", nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create database directory: %w", err)
	}
	return fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path), nil
}

// SetupTestDB returns a fresh in-memory database with the full schema.
func SetupTestDB() *gorm.DB {
	cfg := config.NewForTesting()
	db, err := SetupDB(cfg)
	if err != nil {
		panic(err)
	}
	return db
}
