package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/utils"
)

// InteractionHandler exposes reactions and comments of gallery images.
type InteractionHandler struct {
	interactions service.InteractionService
	identity     service.IdentityService
	validator    *validator.Validate
	logger       zerolog.Logger
}

// NewInteractionHandler constructs an interaction handler.
func NewInteractionHandler(interactions service.InteractionService, identity service.IdentityService, validator *validator.Validate, logger zerolog.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactions,
		identity:     identity,
		validator:    validator,
		logger:       logger.With().Str("component", "interaction_handler").Logger(),
	}
}

// Register mounts the per-image routes. writeLimiter, when non-nil, guards
// the POST routes.
func (h *InteractionHandler) Register(router fiber.Router, writeLimiter fiber.Handler) {
	if writeLimiter == nil {
		writeLimiter = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Get("/:id/interactions", h.get)
	router.Post("/:id/reactions", writeLimiter, h.addReaction)
	router.Post("/:id/comments", writeLimiter, h.addComment)
}

func (h *InteractionHandler) open(c *fiber.Ctx) (service.ImageInteractions, error) {
	imageID, ok := imageIDParam(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "image id is required")
	}
	return h.interactions.Open(c.UserContext(), imageID)
}

func (h *InteractionHandler) get(c *fiber.Ctx) error {
	session, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}
	defer session.Close()

	return utils.SendSuccess(c, "interactions retrieved", dto.NewInteractionsResponse(session.ImageID(), session.Reactions(), session.Comments()))
}

func (h *InteractionHandler) addReaction(c *fiber.Ctx) error {
	var payload dto.ReactionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return sendValidationError(c, err)
	}

	session, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}
	defer session.Close()

	ctx := c.UserContext()
	reaction, err := session.AddReaction(ctx, payload.Emoji, h.identity.Ensure(ctx))
	if err != nil {
		if onlyBroadcastFailed(err) {
			requestLogger(h.logger, c).Warn().Err(err).Msg("reaction saved without live relay")
			return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reaction saved, live update not relayed", reaction)
		}
		return sendServiceError(c, h.logger, err, "add reaction")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "reaction added", reaction)
}

func (h *InteractionHandler) addComment(c *fiber.Ctx) error {
	var payload dto.CommentRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return sendValidationError(c, err)
	}

	session, err := h.open(c)
	if err != nil {
		return h.openError(c, err)
	}
	defer session.Close()

	ctx := c.UserContext()
	comment, err := session.AddComment(ctx, payload.Text, h.identity.Ensure(ctx))
	if err != nil {
		if onlyBroadcastFailed(err) {
			requestLogger(h.logger, c).Warn().Err(err).Msg("comment saved without live relay")
			return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment saved, live update not relayed", comment)
		}
		return sendServiceError(c, h.logger, err, "add comment")
	}
	if comment == nil {
		return utils.SendSuccess(c, "comment ignored", nil)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "comment added", comment)
}

func (h *InteractionHandler) openError(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return utils.SendError(c, fiberErr.Code, fiberErr.Message)
	}
	return sendServiceError(c, h.logger, err, "load interactions")
}
