package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/contre95/lyricsvault/src/music"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Failure classifies why an upload was not accepted.
type Failure string

const (
	FailureInvalidRequest Failure = "invalid_request"
	FailureValidation     Failure = "validation"
	FailurePersistence    Failure = "persistence"
)

// UploadRequest is raw lyrics text plus the metadata it should be stored under.
type UploadRequest struct {
	Content  string
	Artist   string `validate:"required,max=500"`
	Title    string `validate:"required,max=500"`
	Language string `validate:"omitempty,bcp47_language_tag"`
}

// UploadResult is what the upload boundary reports back to its caller.
type UploadResult struct {
	Accepted bool          `json:"success"`
	Message  string        `json:"message"`
	Detail   string        `json:"details,omitempty"`
	Path     string        `json:"file_path,omitempty"`
	Lyrics   *music.Lyrics `json:"lyrics,omitempty"`
	Failure  Failure       `json:"failure,omitempty"`
	// Kind is set when the content failed timestamp validation.
	Kind ValidationKind `json:"kind,omitempty"`
}

// UploadLyrics validates timestamped text strictly and, if accepted, stores it and writes it to disk.
// A single malformed timestamp line rejects the whole upload.
func (s *Service) UploadLyrics(ctx context.Context, req UploadRequest) UploadResult {
	if req.Language == "" {
		req.Language = music.DefaultLanguage
	}
	if err := validate.Struct(req); err != nil {
		s.observer.ObserveImport("upload", "rejected")
		return UploadResult{Message: "invalid upload request", Detail: err.Error(), Failure: FailureInvalidRequest}
	}

	canonical, err := ParseLyricsFile(req.Content)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			slog.Info("Rejected lyrics upload", "artist", req.Artist, "title", req.Title, "kind", verr.Kind, "invalidLines", len(verr.Lines))
			s.observer.ObserveImport("upload", "rejected")
			return UploadResult{Message: verr.Message, Detail: verr.Detail(), Failure: FailureValidation, Kind: verr.Kind}
		}
		return UploadResult{Message: err.Error(), Failure: FailureValidation}
	}

	record := &music.Lyrics{
		Artist:     req.Artist,
		Title:      req.Title,
		Lyrics:     canonical,
		Source:     music.SourceLocal,
		Language:   req.Language,
		Timestamps: true,
	}

	unlock := s.lockKey(req.Artist, req.Title)
	defer unlock()

	// The file goes first so a stored row always has its file on disk.
	result := UploadResult{Accepted: true, Message: "lyrics stored", Lyrics: record}
	if s.files != nil {
		path, err := s.files.SaveLyricsFile(canonical, req.Artist, req.Title)
		if err != nil {
			slog.Error("Failed to write lyrics file", "error", err, "artist", req.Artist, "title", req.Title)
			s.observer.ObserveImport("upload", "failed")
			return UploadResult{Message: "failed to write lyrics file", Detail: err.Error(), Failure: FailurePersistence}
		}
		result.Path = path
		result.Message = "lyrics stored and file saved"
	}

	if err := s.store.Save(ctx, record); err != nil {
		if result.Path != "" {
			if rmErr := os.Remove(result.Path); rmErr != nil {
				slog.Warn("Failed to remove lyrics file after store error", "path", result.Path, "error", rmErr)
			}
		}
		s.observer.ObserveImport("upload", "failed")
		return UploadResult{Message: "failed to store lyrics", Detail: err.Error(), Failure: FailurePersistence}
	}

	s.observer.ObserveImport("upload", "accepted")
	slog.Info("Lyrics upload accepted", "artist", req.Artist, "title", req.Title, "path", result.Path)
	return result
}

// ImportLyrics stores text using the store's lenient check: any line starting with '[' is enough.
// It returns music.ErrNoTimestampMarkers when that check fails.
func (s *Service) ImportLyrics(ctx context.Context, content, artist, title, language string) (*music.Lyrics, error) {
	if language == "" {
		language = music.DefaultLanguage
	}
	unlock := s.lockKey(artist, title)
	defer unlock()

	lyrics, err := s.store.ImportFromText(ctx, content, artist, title, language)
	if errors.Is(err, music.ErrNoTimestampMarkers) {
		s.observer.ObserveImport("import", "rejected")
		return nil, err
	}
	if err != nil {
		s.observer.ObserveImport("import", "failed")
		return nil, fmt.Errorf("failed to import lyrics: %w", err)
	}
	s.observer.ObserveImport("import", "accepted")
	return lyrics, nil
}
