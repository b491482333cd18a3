package tag

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/dhowden/tag"
	"github.com/stretchr/testify/assert"
)

func TestRawLyrics(t *testing.T) {
	assert.Equal(t, "[0:00] vorbis", rawLyrics(map[string]any{"LYRICS": "[0:00] vorbis"}))
	assert.Equal(t, "[0:00] bytes", rawLyrics(map[string]any{"UNSYNCEDLYRICS": []byte("[0:00] bytes")}))
	assert.Equal(t, "[0:00] id3", rawLyrics(map[string]any{"USLT": &tag.Comm{Language: "eng", Text: "[0:00] id3"}}))
	assert.Empty(t, rawLyrics(map[string]any{"TIT2": "Title"}))
	assert.Empty(t, rawLyrics(nil))
}

func TestReadLyrics_NoTags(t *testing.T) {
	_, err := readLyrics(bytes.NewReader([]byte("definitely not an audio file")))
	assert.Error(t, err)
}

func TestReadLyrics_MissingFile(t *testing.T) {
	_, err := NewLyricsReader().ReadLyrics(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}
