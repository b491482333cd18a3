package importing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the importing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	imports := app.Group("/api/imports")
	imports.Post("/scan", handler.ScanInbox)
	imports.Get("/rejected", handler.ListRejected)
	imports.Delete("/rejected", handler.ClearRejected)
	imports.Get("/rejected/:id", handler.GetRejected)
	imports.Delete("/rejected/:id", handler.DismissRejected)
}
