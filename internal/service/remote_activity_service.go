package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/repository"
)

type remoteActivityFeed struct {
	repo     repository.ActivityRepository
	identity IdentityService
	capacity int
	logger   zerolog.Logger
	now      func() time.Time
}

// NewRemoteActivityFeed reads the feed from the remote database.
func NewRemoteActivityFeed(repo repository.ActivityRepository, identity IdentityService, capacity int, logger zerolog.Logger) ActivityFeed {
	if capacity <= 0 {
		capacity = DefaultActivityCapacity
	}
	return &remoteActivityFeed{
		repo:     repo,
		identity: identity,
		capacity: capacity,
		logger:   logger.With().Str("component", "remote_activity_feed").Logger(),
		now:      time.Now,
	}
}

func (f *remoteActivityFeed) Record(ctx context.Context, input ActivityInput) (models.Activity, error) {
	entry, err := buildActivity(input, f.identity.Ensure(ctx), f.now())
	if err != nil {
		return models.Activity{}, err
	}
	if err := f.repo.Create(ctx, &entry); err != nil {
		return models.Activity{}, fmt.Errorf("%w: create activity: %v", ErrRemoteBackend, err)
	}
	return entry, nil
}

func (f *remoteActivityFeed) List(ctx context.Context) ([]models.Activity, error) {
	entries, err := f.repo.ListRecent(ctx, f.capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: list activity: %v", ErrRemoteBackend, err)
	}
	return entries, nil
}
