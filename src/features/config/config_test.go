package config

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsDefaultsForMissingSections(t *testing.T) {
	cfg, err := Parse(strings.NewReader("server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, uint32(8080), cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Lyrics.ProviderTimeout)
	assert.Equal(t, []string{".txt", ".lrc"}, cfg.Files.AllowedExtensions)
	require.Len(t, cfg.Lyrics.Providers, 4)
	assert.Equal(t, "local", cfg.Lyrics.Providers[0].Name)
}

func TestParse_ProviderOrderFollowsFile(t *testing.T) {
	yml := `
lyrics:
  provider_timeout: 3s
  providers:
    - name: genius
      enabled: true
    - name: local
      enabled: true
`
	cfg, err := Parse(strings.NewReader(yml))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Lyrics.ProviderTimeout)
	require.Len(t, cfg.Lyrics.Providers, 2)
	assert.Equal(t, "genius", cfg.Lyrics.Providers[0].Name)
	assert.Equal(t, "local", cfg.Lyrics.Providers[1].Name)
}

func TestParse_EmptyInputIsDefault(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	t.Setenv("GENIUS_API_KEY", "")
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"unknown provider": "lyrics:\n  providers:\n    - name: azlyrics\n      enabled: true\n",
		"bad log level":    "logger:\n  level: loud\n",
		"bad extension":    "files:\n  allowed_extensions: [\"txt\"]\n",
		"telegram token":   "telegram:\n  enabled: true\n",
	}
	for name, yml := range tests {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TELEGRAM_TOKEN", "")
			_, err := Parse(strings.NewReader(yml))
			assert.Error(t, err)
		})
	}
}

func TestParse_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("GENIUS_API_KEY", "genius-key")

	cfg, err := Parse(strings.NewReader("telegram:\n  enabled: true\n"))
	require.NoError(t, err)
	assert.Equal(t, "tg-token", cfg.Telegram.Token)
	assert.Equal(t, "genius-key", cfg.Lyrics.Providers[2].Secret)
}

func TestLoad_WritesDefaultFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "config.yaml")

	manager, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(3535), manager.Get().Server.Port)

	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "lyrics"))
	assert.NoError(t, err)

	// The written file loads back to the same configuration.
	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, manager.Get(), again.Get())
}

func TestManager_RedactsSecrets(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "secret-token"
	cfg.Lyrics.Providers[2].Secret = "genius-secret"
	manager := NewManager(cfg)

	for _, out := range []string{manager.GetJSON(), manager.GetYAML()} {
		assert.NotContains(t, out, "secret-token")
		assert.NotContains(t, out, "genius-secret")
		assert.Contains(t, out, redacted)
	}
	// The live configuration is untouched.
	assert.Equal(t, "genius-secret", manager.Get().Lyrics.Providers[2].Secret)
	assert.Equal(t, "secret-token", manager.Get().Telegram.Token)
}

func TestManager_UpdateAndSave(t *testing.T) {
	manager := NewManager(Default())
	updated := Default()
	updated.Server.Port = 9999
	manager.Update(updated)
	assert.Equal(t, uint32(9999), manager.Get().Server.Port)

	path := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, manager.Save(path))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	loaded, err := Parse(f)
	require.NoError(t, err)
	assert.Equal(t, uint32(9999), loaded.Server.Port)
}

func TestHandler_GetConfig(t *testing.T) {
	cfg := Default()
	cfg.Telegram.Token = "secret-token"
	app := fiber.New()
	RegisterRoutes(app, NewManager(cfg))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/config", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"port":3535`)
	assert.NotContains(t, string(body), "secret-token")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/config?fmt=yaml", nil))
	require.NoError(t, err)
	assert.Equal(t, "text/yaml", resp.Header.Get("Content-Type"))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/config?fmt=xml", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
