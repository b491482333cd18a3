package config

import "time"

// Default returns a new Config with sensible default values.
func Default() *Config {
	return &Config{
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Server: Server{
			PrintRoutes: false,
			Port:        3535,
		},
		Database: Database{
			Path: "./lyrics.db",
		},
		Lyrics: Lyrics{
			ProviderTimeout: 10 * time.Second,
			Providers: []LyricsProvider{
				{Name: "local", Enabled: true},
				{Name: "lrclib", Enabled: true, PreferSynced: true},
				{Name: "genius", Enabled: true},
				{Name: "tekstowo", Enabled: false},
			},
		},
		Files: Files{
			LyricsDir:         "./lyrics",
			AsciifyFilenames:  false,
			AllowedExtensions: []string{".txt", ".lrc"},
		},
		Inbox: Inbox{
			Enabled: false,
			Path:    "./inbox",
		},
		Telegram: Telegram{
			Enabled:      false,
			Token:        "",                                   // Can be obtained with https://t.me/BotFather
			AllowedUsers: []string{"<your_telegram_username>"}, // No @
		},
	}
}
