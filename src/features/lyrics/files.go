package lyrics

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/unidecode"
)

var timestampPattern = regexp.MustCompile(`^\[\d{1,2}:\d{2}(?::\d{2})?\]`)

// ValidationKind names the way a lyrics file was rejected.
type ValidationKind string

const (
	RejectedEmpty         ValidationKind = "empty"
	RejectedNoTimestamps  ValidationKind = "no_timestamps"
	RejectedInvalidFormat ValidationKind = "invalid_format"
)

// ValidationError is returned by ParseLyricsFile when the content is rejected.
type ValidationError struct {
	Kind    ValidationKind
	Message string
	// Lines holds one entry per malformed timestamp line, in file order.
	Lines []string
}

func (e *ValidationError) Error() string {
	if len(e.Lines) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Lines, "; ")
}

// Detail returns the per-line listing, one line per offending input line.
func (e *ValidationError) Detail() string {
	return strings.Join(e.Lines, "\n")
}

// ValidateTimestampFormat reports whether the trimmed line starts with [m:ss], [mm:ss] or [hh:mm:ss].
func ValidateTimestampFormat(line string) bool {
	return timestampPattern.MatchString(strings.TrimSpace(line))
}

// ParseLyricsFile validates timestamped lyrics and returns the canonical text.
// Any malformed bracketed line rejects the whole file.
func ParseLyricsFile(content string) (string, error) {
	lines := splitLines(content)
	if len(lines) == 0 {
		return "", &ValidationError{Kind: RejectedEmpty, Message: "the file is empty"}
	}

	kept := make([]string, 0, len(lines))
	var invalid []string
	hasTimestamps := false

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			kept = append(kept, line)
		case !strings.HasPrefix(line, "["):
			// section headers and untimed text pass through
			kept = append(kept, line)
		case ValidateTimestampFormat(line):
			hasTimestamps = true
			kept = append(kept, line)
		default:
			invalid = append(invalid, fmt.Sprintf("line %d: '%s' - invalid time format", i+1, line))
		}
	}

	if !hasTimestamps {
		return "", &ValidationError{Kind: RejectedNoTimestamps, Message: "no valid timestamps were found"}
	}
	if len(invalid) > 0 {
		return "", &ValidationError{Kind: RejectedInvalidFormat, Message: "the file contains invalid timestamps", Lines: invalid}
	}
	return strings.Join(kept, "\n"), nil
}

// splitLines splits on \n, \r\n and \r. A trailing line break does not produce an extra empty line.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return strings.Split(strings.TrimSuffix(content, "\n"), "\n")
}

// FileService writes canonical lyrics text to a dedicated directory.
type FileService struct {
	dir     string
	asciify bool
	now     func() time.Time
}

// NewFileService creates a FileService writing into dir.
// With asciify set, artist and title are transliterated to ASCII before sanitizing.
func NewFileService(dir string, asciify bool) *FileService {
	return &FileService{dir: dir, asciify: asciify, now: time.Now}
}

// SaveLyricsFile writes content to <dir>/<artist>_<title>_<YYYYmmdd_HHMMSS>.txt and returns the path.
// The timestamp suffix avoids collisions; it does not enforce uniqueness.
func (f *FileService) SaveLyricsFile(content, artist, title string) (string, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create lyrics directory %s: %w", f.dir, err)
	}

	if f.asciify {
		artist = unidecode.Unidecode(artist)
		title = unidecode.Unidecode(title)
	}
	name := fmt.Sprintf("%s_%s_%s.txt", artist, title, f.now().Format("20060102_150405"))
	path := filepath.Join(f.dir, SanitizeFilename(name))

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write lyrics file: %w", err)
	}

	slog.Info("Lyrics file saved", "path", path, "artist", artist, "title", title)
	return path, nil
}

// SanitizeFilename drops every rune that is not a letter, digit, '.', '_', '-' or space.
func SanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("._- ", r) {
			return r
		}
		return -1
	}, name)
}
