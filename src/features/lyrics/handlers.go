package lyrics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/contre95/lyricsvault/src/music"
	"github.com/gofiber/fiber/v2"
)

// Handler handles lyrics requests
type Handler struct {
	service           *Service
	allowedExtensions []string
}

// NewHandler creates a new lyrics handler. allowedExtensions restricts upload file names, e.g. ".lrc".
func NewHandler(service *Service, allowedExtensions []string) *Handler {
	return &Handler{
		service:           service,
		allowedExtensions: allowedExtensions,
	}
}

// LyricsRequest identifies a song by artist and title.
type LyricsRequest struct {
	Artist string `json:"artist" validate:"required"`
	Title  string `json:"title" validate:"required"`
}

// ImportRequest is the JSON body of the lenient import endpoint.
type ImportRequest struct {
	Content  string `json:"content"`
	Artist   string `json:"artist" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Language string `json:"language"`
}

// GetLyrics resolves lyrics for an artist and title through the provider chain.
func (h *Handler) GetLyrics(c *fiber.Ctx) error {
	var req LyricsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lyrics, found := h.service.GetLyrics(c.UserContext(), req.Artist, req.Title)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": fmt.Sprintf("no lyrics found for %s by %s", req.Title, req.Artist),
		})
	}
	return c.JSON(lyrics)
}

// SearchLyrics searches every provider for the query parameter.
func (h *Handler) SearchLyrics(c *fiber.Ctx) error {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}
	slog.Debug("SearchLyrics handler called", "query", query)
	return c.JSON(h.service.SearchLyrics(c.UserContext(), query))
}

// SaveLyrics stores a full record in the local store.
func (h *Handler) SaveLyrics(c *fiber.Ctx) error {
	var lyrics music.Lyrics
	if err := c.BodyParser(&lyrics); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.service.SaveLyrics(c.UserContext(), &lyrics); err != nil {
		if errors.Is(err, music.ErrInvalidRecord) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		slog.Error("Failed to save lyrics", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save lyrics"})
	}
	return c.JSON(lyrics)
}

// UploadLyrics accepts a multipart .txt/.lrc file and stores it after strict validation.
func (h *Handler) UploadLyrics(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(UploadResult{Message: "file is required", Failure: FailureInvalidRequest})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !slices.Contains(h.allowedExtensions, ext) {
		return c.Status(fiber.StatusBadRequest).JSON(UploadResult{
			Message: "invalid file format",
			Detail:  fmt.Sprintf("only %s files are allowed", strings.Join(h.allowedExtensions, ", ")),
			Failure: FailureInvalidRequest,
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("Failed to open uploaded file", "error", err, "filename", fileHeader.Filename)
		return c.Status(fiber.StatusInternalServerError).JSON(UploadResult{Message: "failed to read file", Failure: FailurePersistence})
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("Failed to read uploaded file", "error", err, "filename", fileHeader.Filename)
		return c.Status(fiber.StatusInternalServerError).JSON(UploadResult{Message: "failed to read file", Failure: FailurePersistence})
	}

	result := h.service.UploadLyrics(c.UserContext(), UploadRequest{
		Content:  string(content),
		Artist:   c.FormValue("artist"),
		Title:    c.FormValue("title"),
		Language: c.FormValue("language", music.DefaultLanguage),
	})
	return c.Status(uploadStatus(result)).JSON(result)
}

// ImportLyrics stores JSON-posted text with the lenient bracket check.
func (h *Handler) ImportLyrics(c *fiber.Ctx) error {
	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	lyrics, err := h.service.ImportLyrics(c.UserContext(), req.Content, req.Artist, req.Title, req.Language)
	switch {
	case errors.Is(err, music.ErrNoTimestampMarkers):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "content has no timestamp markers"})
	case err != nil:
		slog.Error("Failed to import lyrics", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to import lyrics"})
	}
	return c.Status(fiber.StatusCreated).JSON(lyrics)
}

// GetProviders lists the providers in fallback order.
func (h *Handler) GetProviders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"providers": h.service.ProviderNames()})
}

func uploadStatus(result UploadResult) int {
	if result.Accepted {
		return fiber.StatusOK
	}
	switch result.Failure {
	case FailureInvalidRequest:
		return fiber.StatusBadRequest
	case FailureValidation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
