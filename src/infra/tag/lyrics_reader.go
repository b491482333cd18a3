package tag

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/contre95/lyricsvault/src/features/importing"
	"github.com/dhowden/tag"
)

// lyricFields are the raw tag names that carry lyrics across ID3, Vorbis and MP4.
var lyricFields = []string{"LYRICS", "UNSYNCEDLYRICS", "USLT", "USLT0", "USLT1", "Lyrics", "UnsyncedLyrics", "©lyr"}

// LyricsReader reads embedded lyrics with the dhowden/tag library.
type LyricsReader struct{}

// NewLyricsReader creates a new LyricsReader
func NewLyricsReader() importing.TagReader {
	return &LyricsReader{}
}

// ReadLyrics reads artist, title and lyrics from an audio file.
func (r *LyricsReader) ReadLyrics(filePath string) (importing.EmbeddedLyrics, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return importing.EmbeddedLyrics{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return readLyrics(file)
}

func readLyrics(rs io.ReadSeeker) (importing.EmbeddedLyrics, error) {
	tags, err := tag.ReadFrom(rs)
	if err != nil {
		return importing.EmbeddedLyrics{}, fmt.Errorf("failed to read tags: %w", err)
	}
	embedded := importing.EmbeddedLyrics{
		Artist: strings.TrimSpace(tags.Artist()),
		Title:  strings.TrimSpace(tags.Title()),
		Lyrics: tags.Lyrics(),
	}
	if embedded.Lyrics == "" {
		embedded.Lyrics = rawLyrics(tags.Raw())
	}
	slog.Debug("Read embedded tags", "format", tags.Format(), "artist", embedded.Artist, "title", embedded.Title, "lyricsLength", len(embedded.Lyrics))
	return embedded, nil
}

// rawLyrics looks for lyric fields the library does not map to Lyrics().
func rawLyrics(raw map[string]any) string {
	for _, field := range lyricFields {
		switch value := raw[field].(type) {
		case string:
			if value != "" {
				return value
			}
		case []byte:
			if len(value) > 0 {
				return string(value)
			}
		case *tag.Comm:
			if value != nil && value.Text != "" {
				return value.Text
			}
		}
	}
	return ""
}
