package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/fotoowl-gallery-api/internal/middleware"
	"github.com/noah-isme/fotoowl-gallery-api/internal/service"
)

// StreamHandler upgrades clients to the live interaction stream.
type StreamHandler struct {
	service service.StreamService
	logger  zerolog.Logger
}

// NewStreamHandler creates a stream handler instance.
func NewStreamHandler(service service.StreamService, logger zerolog.Logger) *StreamHandler {
	return &StreamHandler{
		service: service,
		logger:  logger.With().Str("component", "stream_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *StreamHandler) Register(router fiber.Router) {
	router.Use("/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c))
			c.Locals("request_ctx", ctx)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/stream", websocket.New(h.handleConnection))
}

func (h *StreamHandler) handleConnection(conn *websocket.Conn) {
	imageID := strings.TrimSpace(conn.Query("image_id"))
	if imageID == "" {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "image_id required"))
		_ = conn.Close()
		return
	}

	baseCtx, _ := conn.Locals("request_ctx").(context.Context)
	correlation := middleware.CorrelationIDFromContext(baseCtx)

	h.logger.Debug().Str("image_id", imageID).Str("correlation_id", correlation).Msg("stream client connected")
	h.service.ServeConnection(conn, service.StreamOptions{
		ImageID:       imageID,
		CorrelationID: correlation,
		Context:       baseCtx,
	})
}
