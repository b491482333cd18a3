package importing

import (
	"context"
	"time"
)

// Watcher defines the interface for file system watchers
type Watcher interface {
	Start(ctx context.Context, watchPath string) error
	Stop()
}

// FileEventType represents the type of file system event
type FileEventType string

const FileCreated FileEventType = "created"

// FileEvent represents a debounced change in the watched directory
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
}

// EmbeddedLyrics is what an audio file's tags carry.
type EmbeddedLyrics struct {
	Artist string
	Title  string
	Lyrics string
}

// TagReader reads lyrics embedded in audio file tags.
type TagReader interface {
	ReadLyrics(path string) (EmbeddedLyrics, error)
}
