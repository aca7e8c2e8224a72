package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
	"github.com/noah-isme/fotoowl-gallery-api/internal/repository"
)

type remoteInteractionService struct {
	repo   repository.InteractionRepository
	bus    *eventbus.Bus
	logger zerolog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewRemoteInteractionService stores interactions in the remote database.
// Each record is written in one transaction with its activity entry; live
// updates from other devices arrive through the bus.
func NewRemoteInteractionService(repo repository.InteractionRepository, bus *eventbus.Bus, logger zerolog.Logger) InteractionService {
	return &remoteInteractionService{
		repo:   repo,
		bus:    bus,
		logger: logger.With().Str("component", "remote_interaction_service").Logger(),
		tracer: observability.Tracer("service/remote_interactions"),
		now:    time.Now,
	}
}

func (s *remoteInteractionService) Open(ctx context.Context, imageID string) (ImageInteractions, error) {
	session := newImageSession(imageID)
	session.attach(s.bus)

	reactions, err := s.repo.ListReactions(ctx, imageID)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("%w: list reactions: %v", ErrRemoteBackend, err)
	}
	comments, err := s.repo.ListComments(ctx, imageID)
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("%w: list comments: %v", ErrRemoteBackend, err)
	}
	session.seed(reactions, comments)

	return &remoteImageInteractions{imageSession: session, service: s}, nil
}

type remoteImageInteractions struct {
	*imageSession
	service *remoteInteractionService
}

func (i *remoteImageInteractions) AddReaction(ctx context.Context, emoji string, user models.Identity) (models.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return models.Reaction{}, ErrEmojiRequired
	}

	s := i.service
	ctx, span := s.tracer.Start(ctx, "interaction.add_reaction", trace.WithAttributes(
		attribute.String("image_id", i.imageID),
		attribute.String("backend", backendRemote),
	))
	defer span.End()

	now := s.now()
	reaction := models.Reaction{
		ID:        newRecordID("reaction", now),
		ImageID:   i.imageID,
		Emoji:     emoji,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		UserColor: user.Color,
		Timestamp: now.UnixMilli(),
	}
	activity, err := buildActivity(ActivityInput{
		Type:    models.ActivityReaction,
		ImageID: i.imageID,
		Payload: models.ReactionPayload{Emoji: emoji},
	}, user, now)
	if err != nil {
		return models.Reaction{}, err
	}

	if err := s.repo.CreateReaction(ctx, &reaction, &activity); err != nil {
		span.RecordError(err)
		return models.Reaction{}, fmt.Errorf("%w: create reaction: %v", ErrRemoteBackend, err)
	}

	i.applyReaction(reaction)
	observability.Interactions().WithLabelValues(string(models.ActivityReaction), backendRemote).Inc()

	return reaction, s.broadcast(ctx, eventbus.ReactionAdded{Reaction: reaction})
}

func (i *remoteImageInteractions) AddComment(ctx context.Context, text string, user models.Identity) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s := i.service
	ctx, span := s.tracer.Start(ctx, "interaction.add_comment", trace.WithAttributes(
		attribute.String("image_id", i.imageID),
		attribute.String("backend", backendRemote),
	))
	defer span.End()

	now := s.now()
	comment := models.Comment{
		ID:        newRecordID("comment", now),
		ImageID:   i.imageID,
		Text:      text,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		UserColor: user.Color,
		Timestamp: now.UnixMilli(),
	}
	activity, err := buildActivity(ActivityInput{
		Type:    models.ActivityComment,
		ImageID: i.imageID,
		Payload: models.NewCommentPayload(text),
	}, user, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateComment(ctx, &comment, &activity); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: create comment: %v", ErrRemoteBackend, err)
	}

	i.applyComment(comment)
	observability.Interactions().WithLabelValues(string(models.ActivityComment), backendRemote).Inc()

	return &comment, s.broadcast(ctx, eventbus.CommentAdded{Comment: comment})
}

func (s *remoteInteractionService) broadcast(ctx context.Context, evt eventbus.Event) error {
	if s.bus == nil {
		return nil
	}
	if err := s.bus.Broadcast(ctx, evt); err != nil {
		s.logger.Warn().Err(err).Str("image_id", evt.ImageID()).Msg("live update not relayed")
		return fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
	}
	return nil
}
