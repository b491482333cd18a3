package lyrics

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers lyrics routes
func RegisterRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")
	lyricsAPI := api.Group("/lyrics")

	lyricsAPI.Post("/", handler.GetLyrics)
	lyricsAPI.Put("/", handler.SaveLyrics)
	lyricsAPI.Get("/search", handler.SearchLyrics)
	lyricsAPI.Get("/providers", handler.GetProviders)
	lyricsAPI.Post("/upload", handler.UploadLyrics)
	lyricsAPI.Post("/import", handler.ImportLyrics)
}
