package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/fotoowl-gallery-api/internal/config"
	"github.com/noah-isme/fotoowl-gallery-api/internal/handler"
	"github.com/noah-isme/fotoowl-gallery-api/internal/middleware"
	"github.com/noah-isme/fotoowl-gallery-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	GalleryHandler     *handler.GalleryHandler
	InteractionHandler *handler.InteractionHandler
	ActivityHandler    *handler.ActivityHandler
	ProfileHandler     *handler.ProfileHandler
	StreamHandler      *handler.StreamHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	writeLimiter := middleware.RateLimit("interactions", cfg.RateLimitMax, cfg.RateLimitWindow)

	images := api.Group("/images")
	if deps.GalleryHandler != nil {
		deps.GalleryHandler.Register(images)
	}
	if deps.InteractionHandler != nil {
		deps.InteractionHandler.Register(images, writeLimiter)
	}

	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api.Group("/activity"))
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.RegisterIdentity(api.Group("/me"))
		deps.ProfileHandler.RegisterPreferences(api.Group("/preferences"))
	}

	if deps.StreamHandler != nil {
		deps.StreamHandler.Register(api)
	}
}
