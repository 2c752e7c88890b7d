package main

import (
	"log"

	"image-cropper/internal/config"
	"image-cropper/internal/database"
)

func main() {
	cfg := config.LoadConfig()
	if cfg.DBDriver != "postgres" {
		log.Fatalf("sync_sequences needs DB_DRIVER=postgres, got %q", cfg.DBDriver)
	}
	database.InitGorm(cfg)
	db := database.GormDB

	tables := []string{
		"media",
	}

	log.Println("Syncing PostgreSQL sequences...")

	for _, table := range tables {
		query := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), coalesce(max(id), 0) + 1, false) FROM " + table
		if err := db.Exec(query).Error; err != nil {
			log.Printf("Error syncing sequence for %s: %v", table, err)
		} else {
			log.Printf("Successfully synced sequence for %s", table)
		}
	}

	log.Println("DONE!")
}
