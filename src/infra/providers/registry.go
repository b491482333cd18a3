package providers

import (
	"fmt"
	"log/slog"

	"github.com/contre95/lyricsvault/src/features/config"
	"github.com/contre95/lyricsvault/src/music"
)

const userAgent = "LyricsVault/1.0 (+https://github.com/contre95/lyricsvault)"

// FromConfig builds the provider chain in configured order. The "local" entry is the store itself.
// Disabled entries are skipped.
func FromConfig(entries []config.LyricsProvider, store music.LyricsStore) ([]music.LyricsProvider, error) {
	chain := make([]music.LyricsProvider, 0, len(entries))
	for _, entry := range entries {
		if !entry.Enabled {
			slog.Debug("Lyrics provider disabled", "provider", entry.Name)
			continue
		}
		switch entry.Name {
		case "local":
			if store == nil {
				return nil, fmt.Errorf("provider %q needs a store", entry.Name)
			}
			chain = append(chain, store)
		case "lrclib":
			chain = append(chain, NewLRCLibProvider(entry.PreferSynced))
		case "genius":
			chain = append(chain, NewGeniusProvider(entry.Secret))
		case "tekstowo":
			chain = append(chain, NewTekstowoProvider())
		default:
			return nil, fmt.Errorf("unknown lyrics provider %q", entry.Name)
		}
	}
	slog.Info("Lyrics providers configured", "count", len(chain))
	return chain, nil
}
