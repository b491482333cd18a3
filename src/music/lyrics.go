package music

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultLanguage is the language stored when a record does not carry one.
const DefaultLanguage = "en"

var (
	// ErrNotFound is returned by lookups that have nothing for the requested key.
	ErrNotFound = errors.New("lyrics not found")
	// ErrNoTimestampMarkers is returned when imported text has no line starting with '['.
	ErrNoTimestampMarkers = errors.New("content has no timestamp markers")
	// ErrInvalidRecord is returned when a record misses its identity fields.
	ErrInvalidRecord = errors.New("invalid lyrics record")
)

// Source identifies which provider produced a Lyrics record.
type Source string

const (
	SourceLocal    Source = "local_db"
	SourceLRCLib   Source = "lrclib"
	SourceGenius   Source = "genius"
	SourceTekstowo Source = "tekstowo"
)

// Lyrics is one resolved or stored lyric text.
// Artist and Title form the identity pair and are matched case-sensitively.
type Lyrics struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Lyrics     string `json:"lyrics"`
	Source     Source `json:"source"`
	Language   string `json:"language"`
	Timestamps bool   `json:"timestamps"`
}

// Validate checks the identity pair and fills the default language.
func (l *Lyrics) Validate() error {
	if strings.TrimSpace(l.Artist) == "" {
		return fmt.Errorf("%w: artist cannot be empty", ErrInvalidRecord)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidRecord)
	}
	if len(l.Title) > 500 {
		return fmt.Errorf("%w: title cannot exceed 500 characters, got %d", ErrInvalidRecord, len(l.Title))
	}
	if l.Language == "" {
		l.Language = DefaultLanguage
	}
	return nil
}

// Key returns the uniqueness key used by the persistent store.
func (l *Lyrics) Key() string {
	return l.Artist + "\x00" + l.Title
}
