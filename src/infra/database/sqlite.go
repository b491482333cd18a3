package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/contre95/lyricsvault/src/music"
	_ "github.com/mattn/go-sqlite3"
)

// searchLimit caps the rows returned by Search.
const searchLimit = 10

// SqliteLyrics is the SQLite implementation of music.LyricsStore.
type SqliteLyrics struct {
	db *sql.DB
	// writes are serialized so concurrent upserts of one key cannot interleave
	writeMu sync.Mutex
}

// NewSqliteLyrics opens (or creates) the lyrics database at path.
func NewSqliteLyrics(path string) (*SqliteLyrics, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &SqliteLyrics{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS lyrics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			artist TEXT NOT NULL,
			title TEXT NOT NULL,
			lyrics TEXT NOT NULL,
			language TEXT DEFAULT 'en',
			timestamps BOOLEAN DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(artist, title)
		);

		CREATE INDEX IF NOT EXISTS idx_artist_title ON lyrics(artist, title);
	`)
	return err
}

// Close closes the underlying database.
func (d *SqliteLyrics) Close() error {
	return d.db.Close()
}

// Name returns the provider name.
func (d *SqliteLyrics) Name() string { return string(music.SourceLocal) }

// Fetch returns the row matching artist and title exactly, or nil when there is none.
func (d *SqliteLyrics) Fetch(ctx context.Context, artist, title string) (*music.Lyrics, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT artist, title, lyrics, language, timestamps
		FROM lyrics
		WHERE artist = ? AND title = ?
	`, artist, title)

	lyrics, err := scanLyrics(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	return lyrics, nil
}

// Search matches query as a substring of artist, title or lyrics.
// SQLite LIKE folds case for ASCII letters only, so "édith" does not match "ÉDITH".
func (d *SqliteLyrics) Search(ctx context.Context, query string) ([]music.Lyrics, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := d.db.QueryContext(ctx, `
		SELECT artist, title, lyrics, language, timestamps
		FROM lyrics
		WHERE artist LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\' OR lyrics LIKE ? ESCAPE '\'
		LIMIT ?
	`, pattern, pattern, pattern, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search lyrics: %w", err)
	}
	defer rows.Close()

	results := []music.Lyrics{}
	for rows.Next() {
		lyrics, err := scanLyrics(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lyrics: %w", err)
		}
		results = append(results, *lyrics)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lyrics: %w", err)
	}
	return results, nil
}

// Save inserts the record or replaces the existing row with the same artist and title.
func (d *SqliteLyrics) Save(ctx context.Context, lyrics *music.Lyrics) error {
	if err := lyrics.Validate(); err != nil {
		slog.Error("Save: validation failed", "error", err, "artist", lyrics.Artist, "title", lyrics.Title)
		return err
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO lyrics (artist, title, lyrics, language, timestamps)
		VALUES (?, ?, ?, ?, ?)
	`, lyrics.Artist, lyrics.Title, lyrics.Lyrics, lyrics.Language, lyrics.Timestamps)
	if err != nil {
		slog.Error("Error saving to local DB", "error", err, "artist", lyrics.Artist, "title", lyrics.Title)
		return fmt.Errorf("failed to save lyrics: %w", err)
	}
	return nil
}

// ImportFromText stores content as timestamped lyrics if any trimmed line starts with '['.
// This is a lighter check than the strict line validator used for uploads.
func (d *SqliteLyrics) ImportFromText(ctx context.Context, content, artist, title, language string) (*music.Lyrics, error) {
	if !hasBracketLine(content) {
		return nil, music.ErrNoTimestampMarkers
	}

	lyrics := &music.Lyrics{
		Artist:     artist,
		Title:      title,
		Lyrics:     content,
		Source:     music.SourceLocal,
		Language:   language,
		Timestamps: true,
	}
	if err := d.Save(ctx, lyrics); err != nil {
		return nil, err
	}
	return lyrics, nil
}

// Count returns the number of stored rows.
func (d *SqliteLyrics) Count(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lyrics").Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLyrics(s scanner) (*music.Lyrics, error) {
	var (
		lyrics   music.Lyrics
		language sql.NullString
		stamped  sql.NullBool
	)
	if err := s.Scan(&lyrics.Artist, &lyrics.Title, &lyrics.Lyrics, &language, &stamped); err != nil {
		return nil, err
	}
	lyrics.Language = music.DefaultLanguage
	if language.Valid && language.String != "" {
		lyrics.Language = language.String
	}
	lyrics.Timestamps = stamped.Valid && stamped.Bool
	lyrics.Source = music.SourceLocal
	return &lyrics, nil
}

func hasBracketLine(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "[") {
			return true
		}
	}
	return false
}

// escapeLike makes % and _ in user input match literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
