package stats

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/thunderoad/setlistd/src/setlist"
)

// Handler is the handler for the stats feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the stats feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// recencyRequest is the body of a ranked-recency query.
type recencyRequest struct {
	SongFilter setlist.SongFilter `json:"song_filter"`
	ShowFilter setlist.ShowFilter `json:"show_filter"`
	TopK       int                `json:"top_k"`
}

// Recompute recomputes and persists the global statistics.
func (h *Handler) Recompute(c *fiber.Ctx) error {
	slog.Debug("Recompute handler called")
	if err := h.service.ComputeGlobalStatistics(c.Context()); err != nil {
		slog.Error("Error recomputing global statistics", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error recomputing statistics")
	}
	if err := h.service.RecomputeShowSongCounts(c.Context()); err != nil {
		slog.Error("Error recomputing show song counts", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error recomputing statistics")
	}
	return c.JSON(fiber.Map{"status": "recomputed"})
}

// GetSongs returns every song with its persisted global statistics.
func (h *Handler) GetSongs(c *fiber.Ctx) error {
	slog.Debug("GetSongs handler called")
	songs, err := h.service.GetGlobalStatistics(c.Context())
	if err != nil {
		slog.Error("Error loading global statistics", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error loading statistics")
	}
	return c.JSON(fiber.Map{"songs": songs})
}

// Subset resolves a show filter and returns statistics scoped to it.
func (h *Handler) Subset(c *fiber.Ctx) error {
	slog.Debug("Subset handler called")
	var filter setlist.ShowFilter
	if err := c.BodyParser(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid filter body")
	}

	showIDs, err := h.service.ResolveShowSubset(c.Context(), filter)
	if err != nil {
		if errors.Is(err, setlist.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		slog.Error("Error resolving show subset", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error resolving shows")
	}

	rows, err := h.service.ComputeScopedStatistics(c.Context(), showIDs)
	if err != nil {
		slog.Error("Error computing scoped statistics", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error computing statistics")
	}
	return c.JSON(fiber.Map{"shows_matched": len(showIDs), "stats": rows})
}

// Recency returns the ranked-recency pivot for the given filters.
func (h *Handler) Recency(c *fiber.Ctx) error {
	slog.Debug("Recency handler called")
	req := recencyRequest{TopK: 3}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid request body")
	}

	rows, err := h.service.RankedRecency(c.Context(), req.SongFilter, req.ShowFilter, req.TopK)
	if err != nil {
		if errors.Is(err, setlist.ErrInvalidFilter) {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		slog.Error("Error computing ranked recency", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Error computing recency")
	}
	return c.JSON(fiber.Map{"songs": rows})
}
