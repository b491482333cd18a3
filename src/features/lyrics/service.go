package lyrics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/contre95/lyricsvault/src/music"
)

// Service resolves lyrics from an ordered list of providers and persists imports into the local store.
type Service struct {
	providers []music.LyricsProvider
	store     music.LyricsStore
	files     *FileService
	observer  Observer
	timeout   time.Duration
	keyLocks  keyedMutex
}

// NewService creates a new lyrics service.
// Providers are consulted in slice order. A zero timeout disables the per-provider deadline.
func NewService(providers []music.LyricsProvider, store music.LyricsStore, files *FileService, observer Observer, timeout time.Duration) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		providers: providers,
		store:     store,
		files:     files,
		observer:  observer,
		timeout:   timeout,
	}
}

// ProviderNames returns the configured providers in fallback order.
func (s *Service) ProviderNames() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, providerName(p))
	}
	return names
}

// GetLyrics returns the first record any provider has for artist and title.
// Providers are tried strictly in order; a failing provider counts as absent.
func (s *Service) GetLyrics(ctx context.Context, artist, title string) (*music.Lyrics, bool) {
	for _, provider := range s.providers {
		if ctx.Err() != nil {
			slog.Warn("Lyrics lookup cancelled", "artist", artist, "title", title, "error", ctx.Err())
			return nil, false
		}

		name := providerName(provider)
		start := time.Now()
		lyrics, err := callProvider(ctx, s.timeout, func(ctx context.Context) (*music.Lyrics, error) {
			return provider.Fetch(ctx, artist, title)
		})
		elapsed := time.Since(start)

		if err != nil {
			slog.Warn("Failed to fetch lyrics with provider", "provider", name, "artist", artist, "title", title, "error", err.Error())
			s.observer.ObserveProvider(name, "fetch", OutcomeError, elapsed)
			continue
		}
		if lyrics == nil {
			slog.Debug("Provider has no lyrics", "provider", name, "artist", artist, "title", title)
			s.observer.ObserveProvider(name, "fetch", OutcomeMiss, elapsed)
			continue
		}

		s.observer.ObserveProvider(name, "fetch", OutcomeHit, elapsed)
		slog.Info("Found lyrics with provider", "provider", name, "artist", artist, "title", title, "lyricsLength", len(lyrics.Lyrics))
		return lyrics, true
	}

	slog.Info("No lyrics found with any provider", "artist", artist, "title", title, "providers", len(s.providers))
	return nil, false
}

// SearchLyrics concatenates every provider's results in provider order.
// Results are neither de-duplicated nor re-ranked; a failing provider contributes nothing.
func (s *Service) SearchLyrics(ctx context.Context, query string) []music.Lyrics {
	results := []music.Lyrics{}
	for _, provider := range s.providers {
		if ctx.Err() != nil {
			break
		}

		name := providerName(provider)
		start := time.Now()
		found, err := callProvider(ctx, s.timeout, func(ctx context.Context) ([]music.Lyrics, error) {
			return provider.Search(ctx, query)
		})
		elapsed := time.Since(start)

		if err != nil {
			slog.Warn("Failed to search lyrics with provider", "provider", name, "query", query, "error", err.Error())
			s.observer.ObserveProvider(name, "search", OutcomeError, elapsed)
			continue
		}
		outcome := OutcomeMiss
		if len(found) > 0 {
			outcome = OutcomeHit
		}
		s.observer.ObserveProvider(name, "search", outcome, elapsed)
		results = append(results, found...)
	}
	return results
}

// SaveLyrics persists a record in the local store, replacing any record with the same artist and title.
func (s *Service) SaveLyrics(ctx context.Context, lyrics *music.Lyrics) error {
	unlock := s.lockKey(lyrics.Artist, lyrics.Title)
	defer unlock()

	lyrics.Source = music.SourceLocal
	if err := s.store.Save(ctx, lyrics); err != nil {
		s.observer.ObserveImport("save", "failed")
		return fmt.Errorf("failed to save lyrics: %w", err)
	}
	s.observer.ObserveImport("save", "accepted")
	return nil
}

// StoredCount returns how many records the local store holds.
func (s *Service) StoredCount(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// lockKey serializes validate-then-persist sequences for one (artist, title) key.
func (s *Service) lockKey(artist, title string) func() {
	return s.keyLocks.lock(artist + "\x00" + title)
}

// keyedMutex hands out one mutex per key. An entry lives only while someone holds or waits on it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}

// errProviderTimeout is reported when a provider does not answer within its deadline.
var errProviderTimeout = errors.New("provider timed out")

// callProvider runs fn under the per-provider deadline and turns panics into errors.
// The caller waits for the result, so providers are still consulted one at a time.
func callProvider[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- result{value: zero, err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		value, err := fn(ctx)
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, errProviderTimeout
		}
		return zero, ctx.Err()
	}
}
