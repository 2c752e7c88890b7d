package main

import (
	"context"
	"flag"
	"log"

	"image-cropper/internal/config"
	"image-cropper/internal/database"
	"image-cropper/internal/media"
)

// reconcile_media lists catalogue records whose files are gone from the
// storage root. With -fix the stale records are deleted.
func main() {
	fix := flag.Bool("fix", false, "delete records whose files are missing")
	flag.Parse()

	cfg := config.LoadConfig()
	database.InitGorm(cfg)

	service := media.NewService(cfg.Disk(), media.NewRepository(database.GormDB), nil, cfg.ConflictPolicy())

	missing, err := service.Reconcile(context.Background(), *fix)
	if err != nil {
		log.Fatalf("Reconcile failed: %v", err)
	}

	for _, m := range missing {
		log.Printf("Missing file for media %d: %s", m.ID, m.Path)
	}
	switch {
	case len(missing) == 0:
		log.Println("Catalogue and storage are in sync")
	case *fix:
		log.Printf("Removed %d stale records", len(missing))
	default:
		log.Printf("%d stale records, rerun with -fix to remove them", len(missing))
	}
}
