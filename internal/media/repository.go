package media

import (
	"context"
	"errors"
	"fmt"

	"image-cropper/internal/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("media not found")

// Filter narrows List. Zero values match everything.
type Filter struct {
	Folder string
	Kind   string
	Limit  int
	Offset int
}

// Repository is the gorm-backed media catalogue.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts m, or updates the existing record with the same path.
func (r *Repository) Save(ctx context.Context, m *models.Media) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Media
		err := tx.Where("path = ?", m.Path).First(&existing).Error
		switch {
		case err == nil:
			m.ID = existing.ID
			m.CreatedAt = existing.CreatedAt
			return tx.Save(m).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(m).Error
		default:
			return err
		}
	})
}

func (r *Repository) Get(ctx context.Context, id uint) (*models.Media, error) {
	var m models.Media
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return &m, nil
}

func (r *Repository) GetByPath(ctx context.Context, path string) (*models.Media, error) {
	var m models.Media
	if err := r.db.WithContext(ctx).Where("path = ?", path).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: path %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to get media: %w", err)
	}
	return &m, nil
}

// List returns records newest first.
func (r *Repository) List(ctx context.Context, f Filter) ([]models.Media, error) {
	q := r.db.WithContext(ctx).Model(&models.Media{})
	if f.Folder != "" {
		q = q.Where("folder = ?", f.Folder)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	records := []models.Media{}
	if err := q.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return records, nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Media{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}
