package hosting

import (
	"net/http/httptest"
	"testing"

	"github.com/contre95/lyricsvault/src/features/config"
	"github.com/contre95/lyricsvault/src/features/lyrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.NewManager(config.Default())
	svc := lyrics.NewService(nil, nil, nil, nil, 0)
	return NewServer(cfg, svc, nil, nil)
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestServer_RegistersFeatureRoutes(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.App().Test(httptest.NewRequest("GET", "/api/lyrics/providers", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = srv.App().Test(httptest.NewRequest("GET", "/api/config", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// importing and metrics are optional
	resp, err = srv.App().Test(httptest.NewRequest("GET", "/api/imports/rejected", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, fiber.MIMEApplicationJSON, resp.Header.Get("Content-Type"))
}

func TestErrorHandler_InternalError(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(LogAllRequestsMiddleware())
	app.Get("/boom", func(c *fiber.Ctx) error { return assert.AnError })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "alice", displayName(&tgbotapi.User{UserName: "alice", FirstName: "Alice"}))
	assert.Equal(t, "Alice Doe", displayName(&tgbotapi.User{FirstName: "Alice", LastName: "Doe"}))
	assert.Equal(t, "", displayName(nil))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `rejected\_clear`, escapeMarkdown("rejected_clear"))
	assert.Equal(t, `\[1\.0\]`, escapeMarkdown("[1.0]"))
}

func TestCommandMapCoversFeatureCommands(t *testing.T) {
	handlers := map[string]TelegramCommandHandler{
		"lyrics": lyrics.NewTelegramHandler(lyrics.NewService(nil, nil, nil, nil, 0)),
		"config": config.NewTelegramHandler(config.NewManager(config.Default())),
	}
	for feature, handler := range handlers {
		for command := range handler.GetCommands() {
			assert.Equal(t, feature, commandMap[command], "command %s", command)
		}
	}
	for _, command := range menuCommands {
		assert.Contains(t, commandMap, command)
	}
	for _, p := range menuPrompts {
		assert.Contains(t, commandMap, p.command)
	}
}

func TestPendingInputs(t *testing.T) {
	bot := &TelegramBot{pendingInputs: map[string]string{}}
	bot.storePendingInput(42, 7, "search")

	command, ok := bot.takePendingInput(42, 7)
	assert.True(t, ok)
	assert.Equal(t, "search", command)

	_, ok = bot.takePendingInput(42, 7)
	assert.False(t, ok)
}
