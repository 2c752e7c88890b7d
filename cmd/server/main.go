package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"image-cropper/internal/api"
	"image-cropper/internal/config"
	"image-cropper/internal/database"
	"image-cropper/internal/media"
	"image-cropper/internal/ws"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)

	disk := cfg.Disk()
	if err := disk.EnsureFolder(cfg.DefaultFolder); err != nil {
		log.Fatalf("Failed to prepare storage root %s: %v", cfg.StorageRoot, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	service := media.NewService(disk, media.NewRepository(database.GormDB), hub, cfg.ConflictPolicy())

	router := &api.Router{
		Config:  cfg,
		Service: service,
		Events:  hub.ServeWs,
	}
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.Engine(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		log.Printf("Server starting on port %s, storing under %s", cfg.Port, cfg.StorageRoot)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
