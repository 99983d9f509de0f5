package catalog

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/thunderoad/setlistd/src/setlist"
)

// Handler is the handler for the catalog feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the catalog feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, setlist.ErrConstraintViolation):
		return fiber.StatusConflict
	case errors.Is(err, setlist.ErrReferenceNotFound), errors.Is(err, setlist.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, setlist.ErrInvalidFilter):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// AddSong is the handler for creating a song.
func (h *Handler) AddSong(c *fiber.Ctx) error {
	slog.Debug("AddSong handler called")
	song := new(setlist.Song)
	if err := c.BodyParser(song); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid song body")
	}
	if err := h.service.AddSong(c.Context(), song); err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			slog.Error("Error adding song", "error", err)
			return c.Status(status).SendString("Error adding song")
		}
		return c.Status(status).SendString(err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(song)
}

// GetSong is the handler for getting a single song.
func (h *Handler) GetSong(c *fiber.Ctx) error {
	slog.Debug("GetSong handler called", "id", c.Params("id"))
	song, err := h.service.GetSong(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, setlist.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Song not found")
		}
		slog.Error("Error loading song", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading song")
	}
	return c.JSON(song)
}

// GetSongs is the handler for listing songs, optionally filtered.
func (h *Handler) GetSongs(c *fiber.Ctx) error {
	slog.Debug("GetSongs handler called")
	filter := setlist.SongFilter{TitleContains: c.Query("title")}
	if album := c.Query("album"); album != "" {
		filter.Albums = []string{album}
	}
	songs, err := h.service.FindSongs(c.Context(), filter)
	if err != nil {
		slog.Error("Error loading songs", "error", err)
		return c.Status(statusFor(err)).SendString("Error loading songs")
	}
	return c.JSON(fiber.Map{"songs": songs, "count": len(songs)})
}

// DeleteSong is the handler for deleting a song.
func (h *Handler) DeleteSong(c *fiber.Ctx) error {
	slog.Debug("DeleteSong handler called", "id", c.Params("id"))
	if err := h.service.DeleteSong(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, setlist.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Song not found")
		}
		slog.Error("Error deleting song", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error deleting song")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddShow is the handler for creating a show.
func (h *Handler) AddShow(c *fiber.Ctx) error {
	slog.Debug("AddShow handler called")
	show := new(setlist.Show)
	if err := c.BodyParser(show); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid show body")
	}
	if err := h.service.AddShow(c.Context(), show); err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			slog.Error("Error adding show", "error", err)
			return c.Status(status).SendString("Error adding show")
		}
		return c.Status(status).SendString(err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(show)
}

// GetShow is the handler for getting a single show.
func (h *Handler) GetShow(c *fiber.Ctx) error {
	slog.Debug("GetShow handler called", "id", c.Params("id"))
	show, err := h.service.GetShow(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, setlist.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Show not found")
		}
		slog.Error("Error loading show", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading show")
	}
	return c.JSON(show)
}

// GetShows is the handler for listing all shows.
func (h *Handler) GetShows(c *fiber.Ctx) error {
	slog.Debug("GetShows handler called")
	shows, err := h.service.GetShows(c.Context())
	if err != nil {
		slog.Error("Error loading shows", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading shows")
	}
	return c.JSON(fiber.Map{"shows": shows, "count": len(shows)})
}

// DeleteShow is the handler for deleting a show.
func (h *Handler) DeleteShow(c *fiber.Ctx) error {
	slog.Debug("DeleteShow handler called", "id", c.Params("id"))
	if err := h.service.DeleteShow(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, setlist.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Show not found")
		}
		slog.Error("Error deleting show", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error deleting show")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddPerformance is the handler for recording one setlist entry.
func (h *Handler) AddPerformance(c *fiber.Ctx) error {
	slog.Debug("AddPerformance handler called", "show", c.Params("id"))
	performance := new(setlist.Performance)
	if err := c.BodyParser(performance); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid performance body")
	}
	performance.ShowID = c.Params("id")
	if err := h.service.RecordPerformance(c.Context(), performance); err != nil {
		status := statusFor(err)
		if status == fiber.StatusInternalServerError {
			slog.Error("Error recording performance", "error", err)
			return c.Status(status).SendString("Error recording performance")
		}
		return c.Status(status).SendString(err.Error())
	}
	return c.Status(fiber.StatusCreated).JSON(performance)
}

// GetSetlist is the handler for reading a show's setlist.
func (h *Handler) GetSetlist(c *fiber.Ctx) error {
	slog.Debug("GetSetlist handler called", "show", c.Params("id"))
	performances, err := h.service.GetSetlist(c.Context(), c.Params("id"))
	if err != nil {
		slog.Error("Error loading setlist", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading setlist")
	}
	return c.JSON(fiber.Map{"setlist": performances})
}
