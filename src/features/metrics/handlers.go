package metrics

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler handles HTTP requests for the metrics feature.
type Handler struct {
	collector *Collector
	store     StoreCounter
}

// NewHandler creates a new metrics handler.
func NewHandler(collector *Collector, store StoreCounter) *Handler {
	return &Handler{collector: collector, store: store}
}

// Prometheus serves the registry in the Prometheus exposition format.
func (h *Handler) Prometheus() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(h.collector.Registry(), promhttp.HandlerOpts{}))
}

// GetOverview returns a small JSON summary of the local store.
func (h *Handler) GetOverview(c *fiber.Ctx) error {
	slog.Debug("GetOverview handler called")
	count, err := h.store.StoredCount(c.UserContext())
	if err != nil {
		slog.Error("Error counting stored lyrics", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count stored lyrics"})
	}
	return c.JSON(fiber.Map{"stored_lyrics": count})
}
