package metrics

import (
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes registers the prometheus scrape endpoint.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := adaptor.HTTPHandler(promhttp.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error {
		if err := service.Refresh(c.Context()); err != nil {
			slog.Warn("Failed to refresh catalog gauges", "error", err)
		}
		return handler(c)
	})
}
