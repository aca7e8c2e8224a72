package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/utils"
)

// GalleryHandler serves gallery pages from the photo search collaborator.
type GalleryHandler struct {
	service   service.GalleryService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGalleryHandler constructs a gallery handler.
func NewGalleryHandler(service service.GalleryService, validator *validator.Validate, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "gallery_handler").Logger(),
	}
}

// Register mounts the gallery listing route.
func (h *GalleryHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *GalleryHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page parameter")
	}
	perPage, err := parseQueryInt(c, "perPage")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid perPage parameter")
	}

	query := dto.GalleryQuery{Mood: c.Query("mood"), Page: page, PerPage: perPage}
	if err := h.validator.Struct(query); err != nil {
		return sendValidationError(c, err)
	}

	result, err := h.service.List(c.UserContext(), query.Mood, query.Page, query.PerPage)
	if err != nil {
		return sendServiceError(c, h.logger, err, "load gallery")
	}

	return utils.SendSuccess(c, "gallery retrieved", result)
}
