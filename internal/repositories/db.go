package repositories

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/chisomo-phiri/studyhub/internal/config"
	"github.com/chisomo-phiri/studyhub/internal/models"
)

// Connect opens the metadata store and runs migrations. Small deployments run
// on SQLite, hosted ones point DB_URL at Postgres; everything above this layer
// is driver-agnostic.
func Connect(cfg config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DB_URL)
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Successfully connected to database")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.FileRecord{},
		&models.Subscription{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
