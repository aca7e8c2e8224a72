package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

// InteractionRepository persists reactions and comments for the remote backend.
type InteractionRepository interface {
	ListReactions(ctx context.Context, imageID string) ([]models.Reaction, error)
	ListComments(ctx context.Context, imageID string) ([]models.Comment, error)
	CreateReaction(ctx context.Context, reaction *models.Reaction, activity *models.Activity) error
	CreateComment(ctx context.Context, comment *models.Comment, activity *models.Activity) error
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository constructs an interaction repository backed by GORM.
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

func (r *interactionRepository) ListReactions(ctx context.Context, imageID string) ([]models.Reaction, error) {
	var reactions []models.Reaction
	if err := r.db.WithContext(ctx).
		Where("image_id = ?", imageID).
		Order(`"timestamp" ASC`).
		Find(&reactions).Error; err != nil {
		return nil, err
	}
	return reactions, nil
}

// ListComments returns newest first.
func (r *interactionRepository) ListComments(ctx context.Context, imageID string) ([]models.Comment, error) {
	var comments []models.Comment
	if err := r.db.WithContext(ctx).
		Where("image_id = ?", imageID).
		Order(`"timestamp" DESC`).
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *interactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction, activity *models.Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reaction).Error; err != nil {
			return err
		}
		if activity == nil {
			return nil
		}
		return tx.Create(activity).Error
	})
}

func (r *interactionRepository) CreateComment(ctx context.Context, comment *models.Comment, activity *models.Activity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		if activity == nil {
			return nil
		}
		return tx.Create(activity).Error
	})
}
