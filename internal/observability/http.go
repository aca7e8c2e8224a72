package observability

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerPrefix = "github.com/noah-isme/fotoowl-gallery-api/internal/"

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Tracer returns the tracer for a component, e.g. "service/interactions".
func Tracer(component string) trace.Tracer {
	return otel.Tracer(tracerPrefix + component)
}
