package music

import (
	"context"
)

// LyricsProvider is the capability every lyrics source implements.
type LyricsProvider interface {
	// Fetch looks up lyrics by exact artist and title. A nil record with a nil error means absent.
	Fetch(ctx context.Context, artist, title string) (*Lyrics, error)
	// Search returns free-text matches in provider order. No match is an empty slice.
	Search(ctx context.Context, query string) ([]Lyrics, error)
}

// LyricsStore is the persistent provider. It adds the mutation operations on top of the read capability.
type LyricsStore interface {
	LyricsProvider
	// Save inserts or replaces the row keyed by (artist, title).
	Save(ctx context.Context, lyrics *Lyrics) error
	// ImportFromText stores content as timestamped lyrics when any trimmed line starts with '['.
	// It returns ErrNoTimestampMarkers otherwise.
	ImportFromText(ctx context.Context, content, artist, title, language string) (*Lyrics, error)
	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)
}

// Named is implemented by providers that report a name for logs and metrics.
type Named interface {
	Name() string
}
