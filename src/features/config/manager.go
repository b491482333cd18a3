package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new ConfigManager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"providers_changed", !slices.Equal(oldConfig.Lyrics.Providers, config.Lyrics.Providers),
			"lyrics_dir_changed", oldConfig.Files.LyricsDir != config.Files.LyricsDir,
			"inbox_enabled_changed", oldConfig.Inbox.Enabled != config.Inbox.Enabled,
			"telegram_enabled_changed", oldConfig.Telegram.Enabled != config.Telegram.Enabled,
			"logger_enabled_changed", oldConfig.Logger.Enabled != config.Logger.Enabled,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := saveConfig(path, m.config); err != nil {
		slog.Error("failed to save config", "path", path, "error", err)
		return err
	}
	return nil
}

// EnsureDirectories creates the lyrics, inbox and database directories if they don't exist.
func (m *Manager) EnsureDirectories() error {
	cfg := m.Get()

	dirs := []string{cfg.Files.LyricsDir, filepath.Dir(cfg.Database.Path)}
	if cfg.Inbox.Enabled {
		dirs = append(dirs, cfg.Inbox.Path)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	slog.Info("Required directories created/verified", "lyrics", cfg.Files.LyricsDir, "database", cfg.Database.Path, "inbox", cfg.Inbox.Enabled)
	return nil
}

// redactedCfg gets a copy of the Config with every secret replaced.
// Callers must hold the read lock.
func (m *Manager) redactedCfg() Config {
	cfgCpy := *m.config
	if cfgCpy.Telegram.Token != "" {
		cfgCpy.Telegram.Token = redacted
	}
	cfgCpy.Lyrics.Providers = slices.Clone(m.config.Lyrics.Providers)
	for i := range cfgCpy.Lyrics.Providers {
		if cfgCpy.Lyrics.Providers[i].Secret != "" {
			cfgCpy.Lyrics.Providers[i].Secret = redacted
		}
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jsonBytes, err := json.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

// GetYAML returns the current configuration as a YAML string.
func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
