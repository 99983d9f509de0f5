package stats

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the stats feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	stats := app.Group("/stats")
	stats.Get("/songs", handler.GetSongs)
	stats.Post("/recompute", handler.Recompute)
	stats.Post("/subset", handler.Subset)
	stats.Post("/recency", handler.Recency)
}
