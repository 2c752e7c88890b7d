package api

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

import (
	"context"

	"image-cropper/internal/media"
	"image-cropper/internal/models"
	"image-cropper/internal/storage"
)

// MediaService is what the handlers need from the media catalogue.
type MediaService interface {
	Upload(ctx context.Context, kind storage.Kind, dataURI, folder, filename string) (*models.Media, error)
	Get(ctx context.Context, id uint) (*models.Media, error)
	List(ctx context.Context, f media.Filter) ([]models.Media, error)
	Delete(ctx context.Context, id uint) error
	Exists(path string) bool
	URL(path string) string
	Files(folder string) ([]string, error)
}
