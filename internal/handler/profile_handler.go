package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/utils"
)

// ProfileHandler exposes the visitor identity and UI preferences.
type ProfileHandler struct {
	identity  service.IdentityService
	state     *service.AppState
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProfileHandler constructs the profile handler.
func NewProfileHandler(identity service.IdentityService, state *service.AppState, validator *validator.Validate, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		identity:  identity,
		state:     state,
		validator: validator,
		logger:    logger.With().Str("component", "profile_handler").Logger(),
	}
}

// RegisterIdentity mounts the identity routes.
func (h *ProfileHandler) RegisterIdentity(router fiber.Router) {
	router.Get("/", h.me)
	router.Post("/reset", h.reset)
}

// RegisterPreferences mounts the preference routes.
func (h *ProfileHandler) RegisterPreferences(router fiber.Router) {
	router.Get("/", h.preferences)
	router.Patch("/", h.updatePreferences)
}

func (h *ProfileHandler) me(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "identity retrieved", h.identity.Ensure(c.UserContext()))
}

func (h *ProfileHandler) reset(c *fiber.Ctx) error {
	user := h.identity.Reset(c.UserContext())
	requestLogger(h.logger, c).Info().Str("user_id", user.ID).Msg("identity reset")
	return utils.SendSuccess(c, "identity reset", user)
}

func (h *ProfileHandler) preferences(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "preferences retrieved", h.state.Preferences())
}

func (h *ProfileHandler) updatePreferences(c *fiber.Ctx) error {
	var payload dto.PreferencesUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return sendValidationError(c, err)
	}

	ctx := c.UserContext()
	switch {
	case payload.ToggleTheme:
		if _, err := h.state.ToggleTheme(ctx); err != nil {
			return sendServiceError(c, h.logger, err, "update theme")
		}
	case payload.Theme != nil:
		if err := h.state.SetTheme(ctx, *payload.Theme); err != nil {
			return sendServiceError(c, h.logger, err, "update theme")
		}
	}
	if payload.MoodFilter != nil {
		if err := h.state.SetMoodFilter(ctx, *payload.MoodFilter); err != nil {
			return sendServiceError(c, h.logger, err, "update mood filter")
		}
	}
	if payload.ViewMode != nil {
		if err := h.state.SetViewMode(ctx, *payload.ViewMode); err != nil {
			return sendServiceError(c, h.logger, err, "update view mode")
		}
	}

	return utils.SendSuccess(c, "preferences updated", h.state.Preferences())
}
