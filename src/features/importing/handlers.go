package importing

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler is the handler for the importing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the importing feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Run ingests the configured import directory, or the one named in the
// request body.
func (h *Handler) Run(c *fiber.Ctx) error {
	type importRequest struct {
		DirectoryPath string `json:"directoryPath"`
	}
	var req importRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "cannot parse request body",
			})
		}
	}

	var result *Result
	var err error
	if req.DirectoryPath != "" {
		result, err = h.service.ImportDirectory(c.Context(), req.DirectoryPath)
	} else {
		result, err = h.service.Run(c.Context())
	}
	if err != nil {
		slog.Error("Import failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(result)
}

// ToggleWatcher starts or stops the file system watcher.
func (h *Handler) ToggleWatcher(c *fiber.Ctx) error {
	type watcherRequest struct {
		Action string `json:"action"`
	}
	var req watcherRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "cannot parse request body",
		})
	}

	switch req.Action {
	case "start":
		// The watcher outlives the request.
		if err := h.service.StartWatcher(context.Background()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	case "stop":
		h.service.StopWatcher()
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "action must be start or stop",
		})
	}
	return c.JSON(fiber.Map{"watcher": req.Action})
}
