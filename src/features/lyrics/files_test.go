package lyrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateTimestampFormat(t *testing.T) {
	valid := []string{"[0:00]", "[12:34]", "[1:02:03]", "  [0:15] Now it looks", "[00:00] Hello"}
	for _, line := range valid {
		assert.True(t, ValidateTimestampFormat(line), "expected %q to be valid", line)
	}

	invalid := []string{"[abc]", "0:00", "[0:0]", "[123:00]", "text [0:00]", "[0:00", "[Verse 1]"}
	for _, line := range invalid {
		assert.False(t, ValidateTimestampFormat(line), "expected %q to be invalid", line)
	}
}

func validationError(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a *ValidationError, got %v", err)
	return verr
}

func TestParseLyricsFile_Empty(t *testing.T) {
	_, err := ParseLyricsFile("")
	assert.Equal(t, RejectedEmpty, validationError(t, err).Kind)
}

func TestParseLyricsFile_NoTimestamps(t *testing.T) {
	_, err := ParseLyricsFile("plain text\nmore text")
	assert.Equal(t, RejectedNoTimestamps, validationError(t, err).Kind)
}

func TestParseLyricsFile_OnlyMalformedTimestamps(t *testing.T) {
	_, err := ParseLyricsFile("[x] one\n[y] two")
	assert.Equal(t, RejectedNoTimestamps, validationError(t, err).Kind)
}

func TestParseLyricsFile_InvalidLineRejectsWholeFile(t *testing.T) {
	content, err := ParseLyricsFile("[0:00] Hello\n[x] Bad\n[0:05] World")
	assert.Empty(t, content)

	verr := validationError(t, err)
	assert.Equal(t, RejectedInvalidFormat, verr.Kind)
	require.Len(t, verr.Lines, 1)
	assert.Equal(t, "line 2: '[x] Bad' - invalid time format", verr.Lines[0])
}

func TestParseLyricsFile_ListsEveryInvalidLine(t *testing.T) {
	_, err := ParseLyricsFile("[0:00] a\n[1] b\nok\n[0:0] c")

	verr := validationError(t, err)
	require.Len(t, verr.Lines, 2)
	assert.Contains(t, verr.Lines[0], "line 2:")
	assert.Contains(t, verr.Lines[1], "line 4:")
	assert.Equal(t, verr.Lines[0]+"\n"+verr.Lines[1], verr.Detail())
}

func TestParseLyricsFile_AcceptedKeepsBlankLines(t *testing.T) {
	content, err := ParseLyricsFile("[0:00] Hello\n\n[0:05] World")
	require.NoError(t, err)
	assert.Equal(t, "[0:00] Hello\n\n[0:05] World", content)
}

func TestParseLyricsFile_AcceptedKeepsUntimedLinesAndTrims(t *testing.T) {
	content, err := ParseLyricsFile("Chorus\r\n  [0:15] Now it looks  \r\n[1:00:00] late\n")
	require.NoError(t, err)
	assert.Equal(t, "Chorus\n[0:15] Now it looks\n[1:00:00] late", content)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "ACDC_Back in Black_20240101_120000.txt", SanitizeFilename("AC/DC_Back in Black?_20240101_120000.txt"))
	assert.Equal(t, "Beyoncé_Halo.txt", SanitizeFilename("Beyoncé_Halo!.txt"))
	assert.Equal(t, "..etcpasswd", SanitizeFilename("../etc/passwd"))
}

func TestFileService_SaveLyricsFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lyrics")
	fs := NewFileService(dir, false)
	fs.now = func() time.Time { return time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC) }

	path, err := fs.SaveLyricsFile("[0:00] Hi", "AC/DC", "T.N.T.")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ACDC_T.N.T._20240309_080706.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[0:00] Hi", string(data))
}

func TestFileService_SaveLyricsFileAsciify(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileService(dir, true)
	fs.now = func() time.Time { return time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC) }

	path, err := fs.SaveLyricsFile("[0:00] Hi", "Björk", "Jóga")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Bjork_Joga_20240309_080706.txt"), path)
}
