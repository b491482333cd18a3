package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/contre95/lyricsvault/src/music"
	"golang.org/x/net/html"
)

const tekstowoBaseURL = "https://www.tekstowo.pl"

var tekstowoNoiseWord = []string{"Przeglądaj", "wykonawców"}

// TekstowoProvider implements music.LyricsProvider for tekstowo.pl
type TekstowoProvider struct {
	baseURL string
	client  *http.Client
}

// NewTekstowoProvider creates a new Tekstowo provider
func NewTekstowoProvider() *TekstowoProvider {
	return &TekstowoProvider{baseURL: tekstowoBaseURL, client: &http.Client{}}
}

func (p *TekstowoProvider) Name() string { return string(music.SourceTekstowo) }

// Search lists the songs on the search page; lyrics are left empty.
func (p *TekstowoProvider) Search(ctx context.Context, query string) ([]music.Lyrics, error) {
	songs, err := p.searchSongs(ctx, query)
	if err != nil {
		return nil, err
	}
	results := make([]music.Lyrics, 0, len(songs))
	for _, song := range songs {
		results = append(results, music.Lyrics{
			Title:    song.title,
			Artist:   song.artist,
			Source:   music.SourceTekstowo,
			Language: music.DefaultLanguage,
		})
	}
	return results, nil
}

// Fetch searches for "artist title" and scrapes the first result whose artist matches, else the first result.
func (p *TekstowoProvider) Fetch(ctx context.Context, artist, title string) (*music.Lyrics, error) {
	songs, err := p.searchSongs(ctx, strings.TrimSpace(artist+" "+title))
	if err != nil {
		return nil, fmt.Errorf("failed to search song: %w", err)
	}
	if len(songs) == 0 {
		return nil, nil
	}
	song := songs[0]
	for _, s := range songs {
		if strings.EqualFold(s.artist, strings.TrimSpace(artist)) {
			song = s
			break
		}
	}

	page, err := p.getPage(ctx, song.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	text, err := extractTekstowoLyrics(page)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	return &music.Lyrics{
		Title:    title,
		Artist:   artist,
		Lyrics:   text,
		Source:   music.SourceTekstowo,
		Language: music.DefaultLanguage,
	}, nil
}

type tekstowoSong struct {
	url    string
	artist string
	title  string
}

func (p *TekstowoProvider) searchSongs(ctx context.Context, query string) ([]tekstowoSong, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("insufficient search parameters")
	}
	page, err := p.getPage(ctx, p.baseURL+"/szukaj,"+url.PathEscape(query)+".html")
	if err != nil {
		return nil, err
	}
	return parseTekstowoSearch(page, p.baseURL)
}

// parseTekstowoSearch returns the song links in page order, without duplicates.
// Song links look like /piosenka,artist,title.html with "Artist - Title" as text.
func parseTekstowoSearch(page, baseURL string) ([]tekstowoSong, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	links := findElements(doc, func(n *html.Node) bool {
		href := strings.TrimPrefix(attrValue(n, "href"), baseURL)
		return n.Data == "a" && strings.HasPrefix(href, "/piosenka,") && strings.HasSuffix(href, ".html")
	})

	seen := make(map[string]bool)
	var songs []tekstowoSong
	for _, a := range links {
		link := attrValue(a, "href")
		if !strings.HasPrefix(link, "http") {
			link = baseURL + link
		}
		if seen[link] {
			continue
		}
		artist, title, ok := strings.Cut(innerText(a), " - ")
		if !ok {
			continue
		}
		seen[link] = true
		songs = append(songs, tekstowoSong{url: link, artist: strings.TrimSpace(artist), title: strings.TrimSpace(title)})
	}
	return songs, nil
}

// extractTekstowoLyrics returns the first lyrics block on a song page that is not site navigation.
// inner-text holds only the lyrics; song-text is the older wrapper and also carries a heading.
func extractTekstowoLyrics(page string) (string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("failed to parse song page: %w", err)
	}

	blocks := findElements(doc, func(n *html.Node) bool { return n.Data == "div" && hasClass(n, "inner-text") })
	if len(blocks) == 0 {
		blocks = findElements(doc, func(n *html.Node) bool { return n.Data == "div" && hasClass(n, "song-text") })
	}
	for _, block := range blocks {
		prune(block, func(*html.Node) bool { return false })
		text := nodeText(block)
		if len(text) <= 20 || containsAny(text, tekstowoNoiseWord) {
			continue
		}
		return text, nil
	}
	return "", nil
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func (p *TekstowoProvider) getPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Tekstowo request failed with status %d for URL %s", resp.StatusCode, pageURL)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}
	return string(body), nil
}
