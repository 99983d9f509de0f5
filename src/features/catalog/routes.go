package catalog

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the catalog feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	songs := app.Group("/songs")
	songs.Post("/", handler.AddSong)
	songs.Get("/", handler.GetSongs)
	songs.Get("/:id", handler.GetSong)
	songs.Delete("/:id", handler.DeleteSong)

	shows := app.Group("/shows")
	shows.Post("/", handler.AddShow)
	shows.Get("/", handler.GetShows)
	shows.Get("/:id", handler.GetShow)
	shows.Delete("/:id", handler.DeleteShow)
	shows.Post("/:id/setlist", handler.AddPerformance)
	shows.Get("/:id/setlist", handler.GetSetlist)
}
