package importing

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/contre95/lyricsvault/src/features/lyrics"
	"github.com/google/uuid"
)

var (
	textExtensions  = []string{".lrc", ".txt"}
	audioExtensions = []string{".mp3", ".flac", ".m4a", ".ogg"}
)

// Uploader runs the strict upload flow.
type Uploader interface {
	UploadLyrics(ctx context.Context, req lyrics.UploadRequest) lyrics.UploadResult
}

// ScanSummary counts what a directory scan did.
type ScanSummary struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
}

// Service imports lyric files dropped into the inbox directory.
type Service struct {
	uploader Uploader
	queue    Queue
	reader   TagReader
	watcher  Watcher
	events   <-chan FileEvent
	inbox    string

	scanMu sync.Mutex
	seenMu sync.Mutex
	seen   map[string]time.Time // path -> modtime already processed

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewService creates a new importing service. watcher and events may be nil when the inbox is not watched.
func NewService(uploader Uploader, queue Queue, reader TagReader, watcher Watcher, events <-chan FileEvent, inbox string) *Service {
	return &Service{
		uploader: uploader,
		queue:    queue,
		reader:   reader,
		watcher:  watcher,
		events:   events,
		inbox:    inbox,
		seen:     make(map[string]time.Time),
		stop:     make(chan struct{}),
	}
}

// IsSupported reports whether the inbox importer handles files with this name.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(textExtensions, ext) || slices.Contains(audioExtensions, ext)
}

// Start scans the inbox once and then on every watcher event until ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	if _, err := s.ScanInbox(ctx); err != nil {
		return err
	}
	if s.watcher == nil || s.events == nil {
		return nil
	}
	if err := s.watcher.Start(ctx, s.inbox); err != nil {
		return fmt.Errorf("failed to start inbox watcher: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case event := <-s.events:
				slog.Debug("Inbox changed", "path", event.Path, "type", event.EventType)
				if _, err := s.ScanInbox(ctx); err != nil {
					slog.Error("Inbox scan failed", "error", err)
				}
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops watching the inbox.
func (s *Service) Stop() {
	select {
	case <-s.stop:
		return
	default:
		close(s.stop)
	}
	if s.watcher != nil {
		s.watcher.Stop()
	}
	s.wg.Wait()
}

// ScanInbox imports every supported file in the inbox that has not been processed yet.
func (s *Service) ScanInbox(ctx context.Context) (ScanSummary, error) {
	return s.ImportDirectory(ctx, s.inbox)
}

// ImportDirectory walks dir and imports each supported file once per path and modification time.
func (s *Service) ImportDirectory(ctx context.Context, dir string) (ScanSummary, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	var summary ScanSummary
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !IsSupported(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			slog.Warn("Failed to stat inbox file", "path", path, "error", err)
			return nil
		}
		if !s.markSeen(path, info.ModTime()) {
			summary.Skipped++
			return nil
		}

		if _, err := s.ImportFile(ctx, path); err != nil {
			summary.Rejected++
		} else {
			summary.Accepted++
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if summary.Accepted+summary.Rejected > 0 {
		slog.Info("Inbox scan finished", "dir", dir, "accepted", summary.Accepted, "rejected", summary.Rejected, "skipped", summary.Skipped)
	}
	return summary, nil
}

// ImportFile imports a single .lrc/.txt or audio file. A rejected file lands in the review queue
// and the returned error describes why.
func (s *Service) ImportFile(ctx context.Context, path string) (lyrics.UploadResult, error) {
	req, reason, err := s.buildRequest(path)
	if err != nil {
		s.reject(RejectedItem{Path: path, Artist: req.Artist, Title: req.Title, Reason: reason, Message: err.Error()})
		return lyrics.UploadResult{Message: err.Error(), Failure: lyrics.FailureInvalidRequest}, err
	}

	result := s.uploader.UploadLyrics(ctx, req)
	if !result.Accepted {
		reason := string(result.Kind)
		if reason == "" {
			reason = string(result.Failure)
		}
		s.reject(RejectedItem{Path: path, Artist: req.Artist, Title: req.Title, Reason: reason, Message: result.Message, Detail: result.Detail})
		return result, errors.New(result.Message)
	}
	slog.Info("Imported inbox file", "path", path, "artist", req.Artist, "title", req.Title)
	return result, nil
}

func (s *Service) buildRequest(path string) (lyrics.UploadRequest, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	artist, title, named := lyrics.SplitArtistTitle(base)
	req := lyrics.UploadRequest{Artist: artist, Title: title}

	if slices.Contains(textExtensions, ext) {
		if !named {
			return req, ReasonBadFilename, fmt.Errorf("file name must look like 'Artist - Title%s'", ext)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return req, ReasonUnreadable, fmt.Errorf("failed to read file: %w", err)
		}
		req.Content = string(content)
		return req, "", nil
	}

	if s.reader == nil {
		return req, ReasonUnreadable, errors.New("no tag reader configured for audio files")
	}
	embedded, err := s.reader.ReadLyrics(path)
	if err != nil {
		return req, ReasonUnreadable, fmt.Errorf("failed to read tags: %w", err)
	}
	if embedded.Artist != "" {
		req.Artist = embedded.Artist
	}
	if embedded.Title != "" {
		req.Title = embedded.Title
	}
	if strings.TrimSpace(embedded.Lyrics) == "" {
		return req, ReasonNoEmbeddedLyrics, errors.New("audio file has no embedded lyrics")
	}
	if req.Artist == "" || req.Title == "" {
		return req, ReasonBadFilename, errors.New("audio file has no artist/title tags and its name is not 'Artist - Title'")
	}
	req.Content = embedded.Lyrics
	return req, "", nil
}

// markSeen records path at modTime and reports whether it was new.
func (s *Service) markSeen(path string, modTime time.Time) bool {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	if prev, ok := s.seen[path]; ok && prev.Equal(modTime) {
		return false
	}
	s.seen[path] = modTime
	return true
}

func (s *Service) reject(item RejectedItem) {
	item.ID = uuid.New().String()
	item.Timestamp = time.Now()
	if err := s.queue.Add(item); err != nil {
		slog.Error("Failed to queue rejected file", "path", item.Path, "error", err)
		return
	}
	slog.Warn("Inbox file rejected", "path", item.Path, "reason", item.Reason, "message", item.Message)
}

// GetRejected returns the review queue, oldest first.
func (s *Service) GetRejected() []RejectedItem {
	all := s.queue.GetAll()
	items := make([]RejectedItem, 0, len(all))
	for _, item := range all {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Timestamp.Before(items[j].Timestamp)
	})
	return items
}

// GetRejectedItem returns one queued item.
func (s *Service) GetRejectedItem(id string) (RejectedItem, error) {
	return s.queue.GetByID(id)
}

// DismissRejected removes one item from the review queue.
func (s *Service) DismissRejected(id string) error {
	return s.queue.Remove(id)
}

// ClearRejected empties the review queue.
func (s *Service) ClearRejected() error {
	return s.queue.Clear()
}
