package importing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the importing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	importGroup := app.Group("/import")
	importGroup.Post("/run", handler.Run)
	importGroup.Post("/watcher", handler.ToggleWatcher)
}
