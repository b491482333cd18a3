package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/contre95/lyricsvault/src/music"
	"github.com/k3a/html2text"
	"golang.org/x/net/html"
)

const (
	geniusPublicSearchURL = "https://genius.com/api/search"
	geniusAPISearchURL    = "https://api.genius.com/search"
	geniusSiteURL         = "https://genius.com"
	// maxPageBytes bounds how much of a song page is read.
	maxPageBytes = 4 << 20
)

// Genius API response structures
type geniusSearchResponse struct {
	Response struct {
		Hits []geniusHit `json:"hits"`
	} `json:"response"`
}

type geniusHit struct {
	Type   string     `json:"type"`
	Result geniusSong `json:"result"`
}

type geniusSong struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	ArtistNames   string `json:"artist_names"`
	Path          string `json:"path"`
	URL           string `json:"url"`
	PrimaryArtist struct {
		Name string `json:"name"`
	} `json:"primary_artist"`
}

func (s geniusSong) artist() string {
	if s.PrimaryArtist.Name != "" {
		return s.PrimaryArtist.Name
	}
	return s.ArtistNames
}

func (s geniusSong) pageURL() string {
	if s.URL != "" {
		return s.URL
	}
	return geniusSiteURL + s.Path
}

// GeniusProvider implements music.LyricsProvider for genius.com.
// Search hits carry no lyrics; Fetch scrapes the song page.
type GeniusProvider struct {
	token  string
	client *http.Client
}

// NewGeniusProvider creates a new Genius provider. A non-empty token selects the authenticated API.
func NewGeniusProvider(token string) *GeniusProvider {
	return &GeniusProvider{
		token: token,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
	}
}

func (p *GeniusProvider) Name() string { return string(music.SourceGenius) }

// Search returns one record per song hit with an empty lyrics body.
func (p *GeniusProvider) Search(ctx context.Context, query string) ([]music.Lyrics, error) {
	songs, err := p.searchSongs(ctx, query)
	if err != nil {
		return nil, err
	}
	results := make([]music.Lyrics, 0, len(songs))
	for _, song := range songs {
		results = append(results, music.Lyrics{
			Title:    song.Title,
			Artist:   song.artist(),
			Source:   music.SourceGenius,
			Language: music.DefaultLanguage,
		})
	}
	return results, nil
}

// Fetch searches for "title artist" and scrapes the best hit's page.
func (p *GeniusProvider) Fetch(ctx context.Context, artist, title string) (*music.Lyrics, error) {
	songs, err := p.searchSongs(ctx, strings.TrimSpace(title+" "+artist))
	if err != nil {
		return nil, fmt.Errorf("failed to search song: %w", err)
	}
	if len(songs) == 0 {
		return nil, nil
	}

	song := songs[0]
	for _, s := range songs {
		if strings.EqualFold(strings.TrimSpace(s.artist()), strings.TrimSpace(artist)) {
			song = s
			break
		}
	}

	text, err := p.fetchLyrics(ctx, song.pageURL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	if text == "" {
		return nil, nil
	}
	return &music.Lyrics{
		Title:    title,
		Artist:   artist,
		Lyrics:   text,
		Source:   music.SourceGenius,
		Language: music.DefaultLanguage,
	}, nil
}

func (p *GeniusProvider) searchSongs(ctx context.Context, query string) ([]geniusSong, error) {
	base := geniusPublicSearchURL
	if p.token != "" {
		base = geniusAPISearchURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Genius API request failed with status %d", resp.StatusCode)
	}

	var searchResp geniusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	songs := make([]geniusSong, 0, len(searchResp.Response.Hits))
	for _, hit := range searchResp.Response.Hits {
		if hit.Type != "" && hit.Type != "song" {
			continue
		}
		songs = append(songs, hit.Result)
	}
	return songs, nil
}

func (p *GeniusProvider) fetchLyrics(ctx context.Context, songURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, songURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch lyrics page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics page request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read lyrics page: %w", err)
	}
	return extractLyricsFromHTML(string(body))
}

// extractLyricsFromHTML converts every lyrics container on the page to text.
// Blocks marked data-exclude-from-selection (contributor counts, ads) are dropped.
func extractLyricsFromHTML(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse lyrics page: %w", err)
	}

	excluded := isDiv("data-exclude-from-selection", "true")
	var parts []string
	for _, container := range findElements(doc, isDiv("data-lyrics-container", "true")) {
		prune(container, excluded)
		if text := nodeText(container, html2text.WithLinksInnerText()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
