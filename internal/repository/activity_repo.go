package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

const (
	defaultActivityPage = 50
	maxActivityPage     = 100
)

// ActivityRepository persists activity feed entries.
type ActivityRepository interface {
	Create(ctx context.Context, entry *models.Activity) error
	ListRecent(ctx context.Context, limit int) ([]models.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, entry *models.Activity) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) ListRecent(ctx context.Context, limit int) ([]models.Activity, error) {
	switch {
	case limit <= 0:
		limit = defaultActivityPage
	case limit > maxActivityPage:
		limit = maxActivityPage
	}

	var entries []models.Activity
	if err := r.db.WithContext(ctx).
		Order(`"timestamp" DESC`).
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
