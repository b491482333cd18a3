package importing

import (
	"errors"
	"time"
)

var (
	ErrAlreadyExists = errors.New("item already in the review queue")
	ErrNotFound      = errors.New("item was not found in the review queue")
)

// Reasons a file can be rejected before validation. Validation failures use the lyrics.ValidationKind value.
const (
	ReasonBadFilename      = "bad_filename"
	ReasonNoEmbeddedLyrics = "no_embedded_lyrics"
	ReasonUnreadable       = "unreadable"
)

// RejectedItem is an inbox file that could not be imported and waits for review.
type RejectedItem struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Artist    string    `json:"artist,omitempty"`
	Title     string    `json:"title,omitempty"`
	Reason    string    `json:"reason"`
	Message   string    `json:"message"`
	Detail    string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Queue defines the interface for managing rejected inbox files
type Queue interface {
	// Add adds a new item to the queue, returns ErrAlreadyExists if the ID is taken.
	Add(item RejectedItem) error
	// GetAll returns all items in the queue
	GetAll() map[string]RejectedItem
	// GetByID returns a specific item by ID, or ErrNotFound
	GetByID(id string) (RejectedItem, error)
	// Remove removes an item from the queue by ID, or returns ErrNotFound
	Remove(id string) error
	// Clear removes all items from the queue
	Clear() error
}
