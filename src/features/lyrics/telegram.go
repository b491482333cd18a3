package lyrics

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramMessageLimit keeps replies under Telegram's 4096 character cap.
const telegramMessageLimit = 3800

// TelegramHandler handles Telegram commands for the lyrics feature
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the lyrics feature
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes lyrics-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var text string
	switch command {
	case "lyrics":
		text = h.lyricsReply(ctx, args)
	case "search":
		text = h.searchReply(ctx, args)
	case "stats":
		text = h.statsReply(ctx)
	default:
		text = "Unknown lyrics command. Use /lyrics or /search"
	}

	_, err := bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"lyrics": "Get lyrics: /lyrics Artist - Title",
		"search": "Search lyrics in every provider: /search <query>",
		"stats":  "Show how many lyrics are stored locally",
	}
}

// HandleCallback handles callback queries for this feature (lyrics has no callbacks)
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

func (h *TelegramHandler) lyricsReply(ctx context.Context, args string) string {
	artist, title, ok := SplitArtistTitle(args)
	if !ok {
		return "Usage: /lyrics Artist - Title"
	}
	lyrics, found := h.service.GetLyrics(ctx, artist, title)
	if !found {
		return fmt.Sprintf("No lyrics found for %s by %s", title, artist)
	}
	return truncate(fmt.Sprintf("%s - %s (%s)\n\n%s", lyrics.Artist, lyrics.Title, lyrics.Source, lyrics.Lyrics))
}

func (h *TelegramHandler) searchReply(ctx context.Context, query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Usage: /search <query>"
	}
	results := h.service.SearchLyrics(ctx, query)
	if len(results) == 0 {
		return fmt.Sprintf("No results for %q", query)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d results for %q\n\n", len(results), query)
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s - %s [%s]\n", i+1, r.Artist, r.Title, r.Source)
	}
	return truncate(b.String())
}

func (h *TelegramHandler) statsReply(ctx context.Context) string {
	count, err := h.service.StoredCount(ctx)
	if err != nil {
		return "Failed to read the local store"
	}
	return fmt.Sprintf("Stored lyrics: %d\nProviders: %s", count, strings.Join(h.service.ProviderNames(), " -> "))
}

// SplitArtistTitle splits "Artist - Title" on the first " - ".
func SplitArtistTitle(s string) (artist, title string, ok bool) {
	artist, title, ok = strings.Cut(s, " - ")
	artist, title = strings.TrimSpace(artist), strings.TrimSpace(title)
	if !ok || artist == "" || title == "" {
		return "", "", false
	}
	return artist, title, true
}

func truncate(s string) string {
	if len(s) <= telegramMessageLimit {
		return s
	}
	n := telegramMessageLimit
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "\n..."
}
