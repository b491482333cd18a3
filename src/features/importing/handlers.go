package importing

import (
	"errors"
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

// ListRejected returns the review queue, oldest first.
func (h *Handler) ListRejected(c *fiber.Ctx) error {
	return c.JSON(h.service.GetRejected())
}

// GetRejected returns one rejected item.
func (h *Handler) GetRejected(c *fiber.Ctx) error {
	item, err := h.service.GetRejectedItem(c.Params("id"))
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// DismissRejected removes one item from the review queue.
func (h *Handler) DismissRejected(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DismissRejected(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return err
	}
	slog.Info("Rejected item dismissed", "id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

// ClearRejected empties the review queue.
func (h *Handler) ClearRejected(c *fiber.Ctx) error {
	if err := h.service.ClearRejected(); err != nil {
		slog.Error("Failed to clear review queue", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to clear review queue"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ScanInbox imports new files from the inbox right away.
func (h *Handler) ScanInbox(c *fiber.Ctx) error {
	summary, err := h.service.ScanInbox(c.UserContext())
	if err != nil {
		slog.Error("Error scanning inbox", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to scan inbox"})
	}
	return c.JSON(summary)
}
