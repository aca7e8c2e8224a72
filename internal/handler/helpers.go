package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/middleware"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

func imageIDParam(c *fiber.Ctx) (string, bool) {
	imageID := strings.TrimSpace(c.Params("id"))
	return imageID, imageID != ""
}

func sendValidationError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
	}
	return utils.SendErrorWithDetails(c, fiber.StatusBadRequest, "invalid request", details)
}

// sendServiceError maps service failures onto HTTP statuses.
func sendServiceError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	log := requestLogger(logger, c)
	switch {
	case isValidationError(err):
		return sendValidationError(c, err)
	case errors.Is(err, service.ErrEmojiRequired), errors.Is(err, service.ErrInvalidPreference):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrRemoteBackend):
		log.Warn().Err(err).Msgf("%s: remote backend failed", action)
		return utils.SendError(c, fiber.StatusBadGateway, "remote backend unavailable, please retry")
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Warn().Err(err).Msgf("%s: storage unavailable", action)
		return utils.SendError(c, fiber.StatusServiceUnavailable, "local storage unavailable")
	default:
		log.Error().Err(err).Msgf("%s failed", action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}

// onlyBroadcastFailed reports whether the write landed but could not be relayed.
func onlyBroadcastFailed(err error) bool {
	return errors.Is(err, service.ErrBroadcastFailed) &&
		!errors.Is(err, service.ErrStorageUnavailable) &&
		!errors.Is(err, service.ErrRemoteBackend)
}
