package lyrics

import (
	"fmt"
	"time"

	"github.com/contre95/lyricsvault/src/music"
)

// Provider outcomes reported to an Observer.
const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// Observer receives provider and import outcomes, e.g. for metrics.
type Observer interface {
	ObserveProvider(provider, operation, outcome string, elapsed time.Duration)
	ObserveImport(kind, outcome string)
}

type noopObserver struct{}

func (noopObserver) ObserveProvider(string, string, string, time.Duration) {}
func (noopObserver) ObserveImport(string, string)                         {}

// providerName returns the name a provider reports, or its type name.
func providerName(p music.LyricsProvider) string {
	if named, ok := p.(music.Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", p)
}
