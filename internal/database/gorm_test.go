package database

import (
	"path/filepath"
	"testing"

	"image-cropper/internal/config"
	"image-cropper/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	for _, driver := range []string{"", "sqlite", "postgres"} {
		d, err := Dialector(&config.Config{DBDriver: driver, DBPath: "x.db"})
		if err != nil || d == nil {
			t.Errorf("Dialector(%q) = %v, %v", driver, d, err)
		}
	}
	if _, err := Dialector(&config.Config{DBDriver: "mysql"}); err == nil {
		t.Error("expected unsupported driver error")
	}
}

func TestOpen_MigratesMediaTable(t *testing.T) {
	db, err := Open(sqlite.Open(filepath.Join(t.TempDir(), "catalogue.db")), logger.Silent)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if !db.Migrator().HasTable(&models.Media{}) {
		t.Fatal("media table missing")
	}
	if !db.Migrator().HasIndex(&models.Media{}, "Path") {
		t.Error("expected unique index on path")
	}
}
