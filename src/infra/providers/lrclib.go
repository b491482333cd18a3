package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/contre95/lyricsvault/src/music"
)

const lrclibBaseURL = "https://lrclib.net"

// LRCLib API response structures
type lrclibSong struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	AlbumName    string  `json:"albumName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

var (
	// [00:17.12] or [00:17:12] -> [00:17]
	lrcTimestamp = regexp.MustCompile(`^\[(\d{1,2}):(\d{2})(?:[.:]\d{1,3})?\]`)
	// [ar:Artist], [length: 03:12], [offset:+100]
	lrcIDTag = regexp.MustCompile(`^\[[a-zA-Z#]+:[^\]]*\]\s*$`)
)

// LRCLibProvider implements music.LyricsProvider for lrclib.net
type LRCLibProvider struct {
	baseURL      string
	preferSynced bool
	client       *http.Client
}

// NewLRCLibProvider creates a new LRCLib provider.
// With preferSynced the synced lyrics are returned, normalized to [mm:ss] markers.
func NewLRCLibProvider(preferSynced bool) *LRCLibProvider {
	return &LRCLibProvider{
		baseURL:      lrclibBaseURL,
		preferSynced: preferSynced,
		client:       &http.Client{},
	}
}

func (p *LRCLibProvider) Name() string { return string(music.SourceLRCLib) }

// Fetch looks up a single track. A 404 means LRCLib has no record for it.
func (p *LRCLibProvider) Fetch(ctx context.Context, artist, title string) (*music.Lyrics, error) {
	params := url.Values{}
	params.Set("artist_name", artist)
	params.Set("track_name", title)

	var song lrclibSong
	found, err := p.get(ctx, "/api/get?"+params.Encode(), &song)
	if err != nil || !found {
		return nil, err
	}
	if song.Instrumental && song.PlainLyrics == "" && song.SyncedLyrics == "" {
		return nil, nil
	}

	lyrics := p.toLyrics(song)
	if lyrics.Lyrics == "" {
		return nil, nil
	}
	// LRCLib matches loosely; report the identity that was asked for.
	lyrics.Artist = artist
	lyrics.Title = title
	return lyrics, nil
}

// Search runs a free-text query against the LRCLib search endpoint.
func (p *LRCLibProvider) Search(ctx context.Context, query string) ([]music.Lyrics, error) {
	params := url.Values{}
	params.Set("q", query)

	var songs []lrclibSong
	if _, err := p.get(ctx, "/api/search?"+params.Encode(), &songs); err != nil {
		return nil, err
	}

	results := make([]music.Lyrics, 0, len(songs))
	for _, song := range songs {
		results = append(results, *p.toLyrics(song))
	}
	return results, nil
}

func (p *LRCLibProvider) toLyrics(song lrclibSong) *music.Lyrics {
	lyrics := &music.Lyrics{
		Artist:   song.ArtistName,
		Title:    song.TrackName,
		Source:   music.SourceLRCLib,
		Language: music.DefaultLanguage,
	}
	switch {
	case p.preferSynced && song.SyncedLyrics != "":
		lyrics.Lyrics = normalizeSynced(song.SyncedLyrics)
		lyrics.Timestamps = true
	case song.PlainLyrics != "":
		lyrics.Lyrics = strings.TrimSpace(song.PlainLyrics)
	case song.SyncedLyrics != "":
		lyrics.Lyrics = extractPlainLyricsFromSynced(song.SyncedLyrics)
	}
	return lyrics
}

// get issues a GET and decodes the JSON body into out. It reports false on 404.
func (p *LRCLibProvider) get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("LRCLib API request failed with status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return true, nil
}

// normalizeSynced rewrites LRC lines to [mm:ss] markers and drops ID tags.
func normalizeSynced(synced string) string {
	lines := strings.Split(strings.ReplaceAll(synced, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || lrcIDTag.MatchString(line) {
			continue
		}
		out = append(out, lrcTimestamp.ReplaceAllString(line, "[$1:$2]"))
	}
	return strings.Join(out, "\n")
}

func extractPlainLyricsFromSynced(synced string) string {
	lines := strings.Split(strings.ReplaceAll(synced, "\r\n", "\n"), "\n")
	plain := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if lrcIDTag.MatchString(line) {
			continue
		}
		plain = append(plain, strings.TrimSpace(lrcTimestamp.ReplaceAllString(line, "")))
	}
	return strings.TrimSpace(strings.Join(plain, "\n"))
}
