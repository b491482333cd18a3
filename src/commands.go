package main

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/contre95/lyricsvault/src/features/config"
	"github.com/contre95/lyricsvault/src/features/hosting"
	"github.com/contre95/lyricsvault/src/features/importing"
	"github.com/contre95/lyricsvault/src/features/logging"
	"github.com/contre95/lyricsvault/src/features/lyrics"
	"github.com/contre95/lyricsvault/src/features/metrics"
	"github.com/contre95/lyricsvault/src/infra/database"
	"github.com/contre95/lyricsvault/src/infra/providers"
	"github.com/contre95/lyricsvault/src/infra/queue"
	"github.com/contre95/lyricsvault/src/infra/tag"
	"github.com/contre95/lyricsvault/src/infra/watcher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"
)

// vault holds what every command needs: configuration, the store and the lyrics service.
type vault struct {
	cfg     *config.Manager
	db      *database.SqliteLyrics
	lyrics  *lyrics.Service
	metrics *metrics.Collector
}

// storeCounter feeds the stored-lyrics gauge.
type storeCounter struct {
	db *database.SqliteLyrics
}

func (s storeCounter) StoredCount(ctx context.Context) (int, error) {
	return s.db.Count(ctx)
}

// setup loads the configuration and wires the lyrics service. withMetrics registers prometheus collectors.
func setup(cmd *cli.Command, withMetrics bool) (*vault, error) {
	cfgManager, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.SetDefault(logging.SetupLogger(cfgManager))
	cfg := cfgManager.Get()

	db, err := database.NewSqliteLyrics(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lyrics database: %w", err)
	}

	chain, err := providers.FromConfig(cfg.Lyrics.Providers, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	rt := &vault{cfg: cfgManager, db: db}
	var observer lyrics.Observer
	if withMetrics {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rt.metrics, err = metrics.NewCollector(registry, storeCounter{db: db})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		observer = rt.metrics
	}

	files := lyrics.NewFileService(cfg.Files.LyricsDir, cfg.Files.AsciifyFilenames)
	rt.lyrics = lyrics.NewService(chain, db, files, observer, cfg.Lyrics.ProviderTimeout)
	slog.Debug("Lyrics providers configured", "chain", rt.lyrics.ProviderNames())
	return rt, nil
}

func (rt *vault) close() {
	if err := rt.db.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "serve",
			Usage:  "Run the HTTP API, inbox importer and Telegram bot (default)",
			Action: serve,
		},
		{
			Name:  "get",
			Usage: "Look up lyrics for one song through the provider chain",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Required: true},
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true},
				&cli.BoolFlag{Name: "json", Usage: "Print the full record as JSON"},
			},
			Action: getLyrics,
		},
		{
			Name:      "search",
			Usage:     "Search every provider",
			ArgsUsage: "<query>",
			Action:    searchLyrics,
		},
		{
			Name:      "import",
			Usage:     "Store a timestamped lyrics file",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "artist", Aliases: []string{"a"}, Usage: "Defaults to the 'Artist - Title' file name"},
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}},
				&cli.StringFlag{Name: "language", Aliases: []string{"l"}},
				&cli.BoolFlag{Name: "lenient", Usage: "Only require one line starting with '['"},
			},
			Action: importLyrics,
		},
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	rt, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg := rt.cfg.Get()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var importingService *importing.Service
	if cfg.Inbox.Enabled {
		events := make(chan importing.FileEvent, 10)
		inboxWatcher, err := watcher.NewWatcher(events, watcher.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("failed to create inbox watcher: %w", err)
		}
		importingService = importing.NewService(rt.lyrics, queue.NewInMemoryQueue(), tag.NewLyricsReader(), inboxWatcher, events, cfg.Inbox.Path)
		if err := importingService.Start(ctx); err != nil {
			return fmt.Errorf("failed to start inbox importer: %w", err)
		}
		defer importingService.Stop()
	}

	var telegramBot *hosting.TelegramBot
	if cfg.Telegram.Enabled {
		telegramBot, err = hosting.NewTelegramBot(rt.cfg, rt.lyrics, importingService)
		if err != nil {
			slog.Error("Failed to initialize Telegram bot", "error", err)
		} else {
			go telegramBot.Start()
			defer telegramBot.Stop()
			slog.Info("Telegram bot started")
		}
	}

	server := hosting.NewServer(rt.cfg, rt.lyrics, importingService, metrics.NewHandler(rt.metrics, storeCounter{db: rt.db}))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfg.Server.Port)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	if err := server.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	slog.Info("Server gracefully shut down.")
	return nil
}

func getLyrics(ctx context.Context, cmd *cli.Command) error {
	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	found, ok := rt.lyrics.GetLyrics(ctx, cmd.String("artist"), cmd.String("title"))
	if !ok {
		return fmt.Errorf("no lyrics found for %s - %s", cmd.String("artist"), cmd.String("title"))
	}
	if cmd.Bool("json") {
		return printJSON(cmd, found)
	}
	fmt.Fprintf(cmd.Root().Writer, "# %s - %s (%s)\n\n%s\n", found.Artist, found.Title, found.Source, found.Lyrics)
	return nil
}

func searchLyrics(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("search query is required")
	}
	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	results := rt.lyrics.SearchLyrics(ctx, query)
	if len(results) == 0 {
		fmt.Fprintln(cmd.Root().Writer, "No results")
		return nil
	}
	for _, r := range results {
		fmt.Fprintf(cmd.Root().Writer, "%-8s %s - %s\n", r.Source, r.Artist, r.Title)
	}
	return nil
}

func importLyrics(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("lyrics file is required")
	}
	artist, title := cmd.String("artist"), cmd.String("title")
	if artist == "" || title == "" {
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		nameArtist, nameTitle, ok := lyrics.SplitArtistTitle(base)
		if !ok {
			return fmt.Errorf("pass --artist and --title or name the file 'Artist - Title'")
		}
		artist, title = cmp.Or(artist, nameArtist), cmp.Or(title, nameTitle)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	rt, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	if cmd.Bool("lenient") {
		stored, err := rt.lyrics.ImportLyrics(ctx, string(content), artist, title, cmd.String("language"))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.Root().Writer, "Imported %s - %s\n", stored.Artist, stored.Title)
		return nil
	}

	result := rt.lyrics.UploadLyrics(ctx, lyrics.UploadRequest{
		Content:  string(content),
		Artist:   artist,
		Title:    title,
		Language: cmd.String("language"),
	})
	if !result.Accepted {
		if result.Detail != "" {
			return fmt.Errorf("%s:\n%s", result.Message, result.Detail)
		}
		return fmt.Errorf("%s", result.Message)
	}
	fmt.Fprintln(cmd.Root().Writer, result.Message, result.Path)
	return nil
}

func printJSON(cmd *cli.Command, v any) error {
	enc := json.NewEncoder(cmd.Root().Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
