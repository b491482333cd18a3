package config

import "time"

// Config holds the application configuration.
type Config struct {
	Logger   Logger   `yaml:"logger" json:"logger"`
	Server   Server   `yaml:"server" json:"server"`
	Database Database `yaml:"database" json:"database"`
	Lyrics   Lyrics   `yaml:"lyrics" json:"lyrics"`
	Files    Files    `yaml:"files" json:"files"`
	Inbox    Inbox    `yaml:"inbox" json:"inbox"`
	Telegram Telegram `yaml:"telegram" json:"telegram"`
}

// Logger holds the configuration for the app logging
type Logger struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Level   string `yaml:"level" json:"level" validate:"omitempty,oneof=debug info warn error"`
	Format  string `yaml:"format" json:"format" validate:"omitempty,oneof=json text logfmt"`
}

// Server hold the configuration for the Fiber server Config
type Server struct {
	PrintRoutes bool   `yaml:"show_routes" json:"show_routes"`
	Port        uint32 `yaml:"port" json:"port" validate:"required,min=1,max=65535"`
}

// Database holds the configuration for the database
type Database struct {
	Path string `yaml:"path" json:"path" validate:"required"`
}

// Lyrics holds the configuration for lyrics providers.
// Providers are consulted in list order.
type Lyrics struct {
	ProviderTimeout time.Duration    `yaml:"provider_timeout" json:"provider_timeout"`
	Providers       []LyricsProvider `yaml:"providers" json:"providers" validate:"dive"`
}

// LyricsProvider holds configuration for an individual lyrics provider
type LyricsProvider struct {
	Name         string `yaml:"name" json:"name" validate:"required,oneof=local lrclib genius tekstowo"`
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	PreferSynced bool   `yaml:"prefer_synced,omitempty" json:"prefer_synced,omitempty"`
	Secret       string `yaml:"secret,omitempty" json:"secret,omitempty"`
}

// Files holds the configuration for uploaded lyric files
type Files struct {
	LyricsDir         string   `yaml:"lyrics_dir" json:"lyrics_dir" validate:"required"`
	AsciifyFilenames  bool     `yaml:"asciify_filenames" json:"asciify_filenames"`
	AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions" validate:"min=1,dive,startswith=."`
}

// Inbox holds the configuration for the watched import directory
type Inbox struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path" validate:"required_if=Enabled true"`
}

type Telegram struct {
	Enabled      bool     `yaml:"enabled" json:"enabled"`
	Token        string   `yaml:"token" json:"token" validate:"required_if=Enabled true"`
	AllowedUsers []string `yaml:"allowedUsers" json:"allowedUsers"`
}

