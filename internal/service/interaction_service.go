package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/fotoowl-gallery-api/internal/eventbus"
	"github.com/noah-isme/fotoowl-gallery-api/internal/models"
	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
	"github.com/noah-isme/fotoowl-gallery-api/internal/store"
)

const (
	backendLocal  = "local"
	backendRemote = "remote"
)

// InteractionService opens live interaction sessions for images.
type InteractionService interface {
	Open(ctx context.Context, imageID string) (ImageInteractions, error)
}

// ImageInteractions exposes the reactions and comments of one image and
// appends new ones. Comments are ordered newest first.
type ImageInteractions interface {
	ImageID() string
	Reactions() []models.Reaction
	Comments() []models.Comment
	AddReaction(ctx context.Context, emoji string, user models.Identity) (models.Reaction, error)
	// AddComment returns a nil comment and no error when text is blank.
	AddComment(ctx context.Context, text string, user models.Identity) (*models.Comment, error)
	Close()
}

type localInteractionService struct {
	store    store.Store
	bus      *eventbus.Bus
	activity ActivityRecorder
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	// writeMu serialises read-modify-write cycles within this process.
	// Writers in other processes are not excluded.
	writeMu sync.Mutex
}

// NewLocalInteractionService persists interactions in the durable store and
// relays them on the bus.
func NewLocalInteractionService(st store.Store, bus *eventbus.Bus, activity ActivityRecorder, logger zerolog.Logger) InteractionService {
	return &localInteractionService{
		store:    st,
		bus:      bus,
		activity: activity,
		logger:   logger.With().Str("component", "interaction_service").Logger(),
		tracer:   observability.Tracer("service/interactions"),
		now:      time.Now,
	}
}

func (s *localInteractionService) Open(ctx context.Context, imageID string) (ImageInteractions, error) {
	session := newImageSession(imageID)
	session.attach(s.bus)

	reactions, err := store.ReadCollection[models.Reaction](ctx, s.store, store.ReactionsKey(imageID), s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Str("image_id", imageID).Msg("reactions unavailable, starting empty")
	}
	comments, err := store.ReadCollection[models.Comment](ctx, s.store, store.CommentsKey(imageID), s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Str("image_id", imageID).Msg("comments unavailable, starting empty")
	}
	session.seed(reactions, comments)

	return &localImageInteractions{imageSession: session, service: s}, nil
}

type localImageInteractions struct {
	*imageSession
	service *localInteractionService
}

func (i *localImageInteractions) AddReaction(ctx context.Context, emoji string, user models.Identity) (models.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return models.Reaction{}, ErrEmojiRequired
	}

	s := i.service
	ctx, span := s.tracer.Start(ctx, "interaction.add_reaction", trace.WithAttributes(
		attribute.String("image_id", i.imageID),
		attribute.String("backend", backendLocal),
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

	i.applyReaction(reaction)

	var errs []error
	if err := s.persistReaction(ctx, reaction); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if err := s.broadcast(ctx, eventbus.ReactionAdded{Reaction: reaction}); err != nil {
		errs = append(errs, err)
	}
	s.record(ctx, ActivityInput{
		Type:    models.ActivityReaction,
		ImageID: i.imageID,
		Payload: models.ReactionPayload{Emoji: emoji},
	})

	observability.Interactions().WithLabelValues(string(models.ActivityReaction), backendLocal).Inc()

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	}
	return reaction, err
}

func (i *localImageInteractions) AddComment(ctx context.Context, text string, user models.Identity) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s := i.service
	ctx, span := s.tracer.Start(ctx, "interaction.add_comment", trace.WithAttributes(
		attribute.String("image_id", i.imageID),
		attribute.String("backend", backendLocal),
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

	i.applyComment(comment)

	var errs []error
	if err := s.persistComment(ctx, comment); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if err := s.broadcast(ctx, eventbus.CommentAdded{Comment: comment}); err != nil {
		errs = append(errs, err)
	}
	s.record(ctx, ActivityInput{
		Type:    models.ActivityComment,
		ImageID: i.imageID,
		Payload: models.NewCommentPayload(text),
	})

	observability.Interactions().WithLabelValues(string(models.ActivityComment), backendLocal).Inc()

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
	}
	return &comment, err
}

// persistReaction re-reads the stored collection so writes from other
// processes since Open are kept, then appends. A write landing between this
// read and the overwrite is lost.
func (s *localInteractionService) persistReaction(ctx context.Context, reaction models.Reaction) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := store.ReactionsKey(reaction.ImageID)
	current, err := store.ReadCollection[models.Reaction](ctx, s.store, key, s.logger)
	if err != nil {
		return err
	}
	return store.WriteCollection(ctx, s.store, key, append(current, reaction))
}

func (s *localInteractionService) persistComment(ctx context.Context, comment models.Comment) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	key := store.CommentsKey(comment.ImageID)
	current, err := store.ReadCollection[models.Comment](ctx, s.store, key, s.logger)
	if err != nil {
		return err
	}
	return store.WriteCollection(ctx, s.store, key, append([]models.Comment{comment}, current...))
}

func (s *localInteractionService) broadcast(ctx context.Context, evt eventbus.Event) error {
	if s.bus == nil {
		return nil
	}
	if err := s.bus.Broadcast(ctx, evt); err != nil {
		return fmt.Errorf("%w: %v", ErrBroadcastFailed, err)
	}
	return nil
}

func (s *localInteractionService) record(ctx context.Context, input ActivityInput) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.Record(ctx, input); err != nil {
		s.logger.Warn().Err(err).Str("image_id", input.ImageID).Str("type", string(input.Type)).Msg("activity not recorded")
	}
}
