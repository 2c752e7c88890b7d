package main

import (
	"flag"
	"log"

	"image-cropper/internal/config"
	"image-cropper/internal/database"
	"image-cropper/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const batchSize = 500

// migrate_data copies the media catalogue from the sqlite file at DB_PATH
// into the postgres database described by DB_HOST and friends.
func main() {
	source := flag.String("source", "", "sqlite catalogue to copy (defaults to DB_PATH)")
	truncate := flag.Bool("truncate", false, "empty the postgres media table before copying")
	flag.Parse()

	cfg := config.LoadConfig()
	if *source == "" {
		*source = cfg.DBPath
	}

	// 1. Connect to SQLite (Source)
	sqliteDB, err := database.Open(sqlite.Open(*source), logger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect to SQLite: %v", err)
	}
	log.Printf("Connected to SQLite at %s", *source)

	// 2. Connect to PostgreSQL (Destination)
	pgDB, err := database.Open(postgres.Open(cfg.PostgresDSN()), logger.Warn)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}

	log.Println("Starting media catalogue migration...")

	var copied int
	var records []models.Media
	err = pgDB.Transaction(func(tx *gorm.DB) error {
		if *truncate {
			if err := tx.Exec("TRUNCATE TABLE media RESTART IDENTITY").Error; err != nil {
				return err
			}
		}
		// IDs are kept so /api/media/:id links stay valid.
		return sqliteDB.FindInBatches(&records, batchSize, func(batch *gorm.DB, _ int) error {
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
			copied += len(records)
			return nil
		}).Error
	})
	if err != nil {
		log.Fatalf("Error migrating media: %v", err)
	}

	log.Printf("Migration completed, %d media records copied. Run sync_sequences next.", copied)
}
