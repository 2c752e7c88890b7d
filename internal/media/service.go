package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"

	"image-cropper/internal/models"
	"image-cropper/internal/storage"
)

// Catalogue is the record store the service writes to.
type Catalogue interface {
	Save(ctx context.Context, m *models.Media) error
	Get(ctx context.Context, id uint) (*models.Media, error)
	List(ctx context.Context, f Filter) ([]models.Media, error)
	Delete(ctx context.Context, id uint) error
}

// Notifier receives catalogue change events.
type Notifier interface {
	NotifyMediaStored(m *models.Media)
	NotifyMediaDeleted(m *models.Media)
}

// Service ties the disk and the catalogue together so that every record
// points at a file that was fully written.
type Service struct {
	Disk       *storage.Disk
	Catalogue  Catalogue
	Notifier   Notifier
	OnConflict storage.ConflictPolicy
}

func NewService(disk *storage.Disk, catalogue Catalogue, notifier Notifier, policy storage.ConflictPolicy) *Service {
	return &Service{
		Disk:       disk,
		Catalogue:  catalogue,
		Notifier:   notifier,
		OnConflict: policy,
	}
}

// Upload persists dataURI with the preset for kind and records it.
func (s *Service) Upload(ctx context.Context, kind storage.Kind, dataURI, folder, filename string) (*models.Media, error) {
	opts, err := s.Disk.Options(kind, folder, filename, s.OnConflict)
	if err != nil {
		return nil, err
	}
	opts.KeepReplaced = true

	res, err := s.Disk.Store(ctx, dataURI, opts)
	if err != nil {
		return nil, err
	}

	detected, err := s.Disk.MimeType(res.Path)
	if err != nil {
		log.Printf("Error detecting mime type of %s: %v", res.Path, err)
	}

	record := &models.Media{
		Path:         res.Path,
		Kind:         string(res.Kind),
		Folder:       res.Folder,
		Filename:     res.Filename,
		DeclaredMime: res.MimeType,
		DetectedMime: detected,
		Extension:    res.Extension,
		Size:         res.Size,
	}
	if err := s.Catalogue.Save(ctx, record); err != nil {
		if rerr := s.Disk.Rollback(res); rerr != nil {
			log.Printf("Error rolling back %s after failed catalogue write: %v", res.Path, rerr)
		}
		return nil, fmt.Errorf("failed to record %s: %w", res.Path, err)
	}
	if err := s.Disk.Commit(res); err != nil {
		log.Printf("Error removing replaced copy of %s: %v", res.Path, err)
	}

	log.Printf("Stored %s %s (%d bytes, streamed=%v)", res.Kind, res.Path, res.Size, res.Streamed)
	if s.Notifier != nil {
		s.Notifier.NotifyMediaStored(record)
	}
	return record, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Media, error) {
	return s.Catalogue.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Media, error) {
	return s.Catalogue.List(ctx, f)
}

// Delete removes the file and then its record. A file that is already gone
// does not block removing the record.
func (s *Service) Delete(ctx context.Context, id uint) error {
	record, err := s.Catalogue.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Disk.Delete(record.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := s.Catalogue.Delete(ctx, id); err != nil {
		return err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyMediaDeleted(record)
	}
	return nil
}

func (s *Service) Exists(path string) bool {
	return s.Disk.Exists(path)
}

func (s *Service) URL(path string) string {
	return s.Disk.URL(path)
}

func (s *Service) Files(folder string) ([]string, error) {
	return s.Disk.List(folder)
}

// Reconcile returns the records whose files are missing from disk. With fix
// set, those records are deleted.
func (s *Service) Reconcile(ctx context.Context, fix bool) ([]models.Media, error) {
	records, err := s.Catalogue.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}

	var missing []models.Media
	for _, r := range records {
		if s.Disk.Exists(r.Path) {
			continue
		}
		missing = append(missing, r)
		if !fix {
			continue
		}
		if err := s.Catalogue.Delete(ctx, r.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return missing, err
		}
		if s.Notifier != nil {
			s.Notifier.NotifyMediaDeleted(&r)
		}
	}
	return missing, nil
}
