package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/dto"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
	"github.com/noah-isme/fotoowl-gallery-api/internal/utils"
)

// ActivityHandler serves the recent activity feed.
type ActivityHandler struct {
	feed      service.ActivityFeed
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewActivityHandler constructs the activity feed handler.
func NewActivityHandler(feed service.ActivityFeed, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		feed:      feed,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register mounts the feed route.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
}

func (h *ActivityHandler) list(c *fiber.Ctx) error {
	entries, err := h.feed.List(c.UserContext())
	if err != nil {
		return sendServiceError(c, h.logger, err, "load activity")
	}

	items := make([]dto.ActivityItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ActivityItem{
			Activity:    entry,
			Description: h.sanitizer.Sanitize(service.DescribeActivity(entry)),
		})
	}

	return utils.SendSuccess(c, "activity retrieved", dto.ActivityFeedResponse{Items: items, Total: len(items)})
}
