package hosting

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/contre95/lyricsvault/src/features/config"
	"github.com/contre95/lyricsvault/src/features/importing"
	"github.com/contre95/lyricsvault/src/features/lyrics"
	"github.com/contre95/lyricsvault/src/features/metrics"
	"github.com/gofiber/fiber/v2"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server. importingService may be nil when the inbox is disabled.
func NewServer(cfg *config.Manager, lyricsService *lyrics.Service, importingService *importing.Service, metricsHandler *metrics.Handler) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		AppName:               "LyricsVault",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
		BodyLimit:             10 * 1024 * 1024, // lyric files are small
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	lyrics.RegisterRoutes(app, lyrics.NewHandler(lyricsService, cfg.Get().Files.AllowedExtensions))
	config.RegisterRoutes(app, cfg)
	if metricsHandler != nil {
		metrics.RegisterRoutes(app, metricsHandler)
	}
	if importingService != nil {
		importing.RegisterRoutes(app, importingService)
	}

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App exposes the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("Internal Server Error", "error", err, "path", c.Path())
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
