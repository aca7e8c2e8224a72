package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
)

// ActivityInput is the minimal description of an interaction to record.
type ActivityInput struct {
	Type    models.ActivityType
	ImageID string
	Payload interface{}
}

// ActivityRecorder appends entries to the activity feed.
type ActivityRecorder interface {
	Record(ctx context.Context, input ActivityInput) (models.Activity, error)
}

// ActivityFeed is the bounded, newest-first log of interactions.
type ActivityFeed interface {
	ActivityRecorder
	List(ctx context.Context) ([]models.Activity, error)
}

// DescribeActivity renders a feed line for entry.
func DescribeActivity(entry models.Activity) string {
	return entry.Describe()
}

type localActivityFeed struct {
	state    *AppState
	identity IdentityService
	logger   zerolog.Logger
	now      func() time.Time
}

// NewLocalActivityFeed keeps the feed in the application state.
func NewLocalActivityFeed(state *AppState, identity IdentityService, logger zerolog.Logger) ActivityFeed {
	return &localActivityFeed{
		state:    state,
		identity: identity,
		logger:   logger.With().Str("component", "activity_feed").Logger(),
		now:      time.Now,
	}
}

func (f *localActivityFeed) Record(ctx context.Context, input ActivityInput) (models.Activity, error) {
	entry, err := buildActivity(input, f.identity.Ensure(ctx), f.now())
	if err != nil {
		return models.Activity{}, err
	}

	if err := f.state.PrependActivity(ctx, entry); err != nil {
		f.logger.Warn().Err(err).Str("activity_id", entry.ID).Msg("activity kept in memory only")
		return entry, err
	}
	return entry, nil
}

func (f *localActivityFeed) List(context.Context) ([]models.Activity, error) {
	return f.state.Activity(), nil
}

func buildActivity(input ActivityInput, user models.Identity, at time.Time) (models.Activity, error) {
	payload, err := models.EncodePayload(input.Payload)
	if err != nil {
		return models.Activity{}, fmt.Errorf("build %s activity: %w", input.Type, err)
	}

	return models.Activity{
		ID:        newRecordID("activity", at),
		Type:      input.Type,
		ImageID:   input.ImageID,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		UserColor: user.Color,
		Payload:   payload,
		Timestamp: at.UnixMilli(),
	}, nil
}
