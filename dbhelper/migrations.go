package dbhelper

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"wardrobeapi/models"
)

// SchemaMigration records an applied schema version.
type SchemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:100"`
	AppliedAt time.Time
}

type migration struct {
	version int
	name    string
	models  []interface{}
}

// Versions are additive: a later version never alters the tables of an
// earlier one.
var migrations = []migration{
	{1, "wardrobe", []interface{}{&models.Clothing{}, &models.UserProfile{}, &models.OutfitHistory{}}},
	{2, "chat_messages", []interface{}{&models.ChatMessage{}}},
}

func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate applies every pending schema version in order.
func Migrate(db *gorm.DB) error {
	return migrateTo(db, LatestSchemaVersion())
}

func migrateTo(db *gorm.DB, target int) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current || m.version > target {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			for _, model := range m.models {
				if err := tx.AutoMigrate(model); err != nil {
					return fmt.Errorf("migrating %T: %w", model, err)
				}
			}
			return tx.Create(&SchemaMigration{Version: m.version, Name: m.name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			log.Error().Err(err).Int("version", m.version).Msg("schema migration failed")
			return err
		}
		log.Info().Int("version", m.version).Str("name", m.name).Msg("schema migration applied")
	}
	return nil
}

// SchemaVersion returns the highest applied version, 0 for a new database.
func SchemaVersion(db *gorm.DB) (int, error) {
	var version int
	err := db.Model(&SchemaMigration{}).Select("COALESCE(MAX(version), 0)").Scan(&version).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// SetupCleaner returns a func that empties every wardrobe table.
func SetupCleaner(db *gorm.DB) func() {
	return func() {
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.ChatMessage{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.OutfitHistory{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Clothing{})
		db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.UserProfile{})
	}
}
