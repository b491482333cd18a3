package hosting

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/contre95/lyricsvault/src/features/config"
	"github.com/contre95/lyricsvault/src/features/importing"
	"github.com/contre95/lyricsvault/src/features/lyrics"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramCommandHandler interface that each feature implements
type TelegramCommandHandler interface {
	HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error
	GetCommands() map[string]string                                             // Returns command -> description mapping
	HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool // Handle feature-specific callbacks
}

// commandMap routes a bot command to the feature that owns it.
var commandMap = map[string]string{
	"lyrics":         "lyrics",
	"search":         "lyrics",
	"stats":          "lyrics",
	"config":         "config",
	"rejected":       "importing",
	"rejected_clear": "importing",
	"scan":           "importing",
}

// menuCommands maps main menu buttons to the command they run.
var menuCommands = map[string]string{
	"menu_stats":    "stats",
	"menu_config":   "config",
	"menu_rejected": "rejected",
	"menu_scan":     "scan",
}

// menuPrompts maps menu buttons that need user input to the command the reply feeds.
var menuPrompts = map[string]struct {
	command string
	prompt  string
}{
	"menu_lookup": {"lyrics", "🎤 *Find lyrics*\n\nReply with `Artist - Title`"},
	"menu_search": {"search", "🔍 *Search lyrics*\n\nReply with your search query"},
}

// TelegramBot handles Telegram bot operations
type TelegramBot struct {
	bot      *tgbotapi.BotAPI
	config   *config.Manager
	handlers map[string]TelegramCommandHandler
	updates  tgbotapi.UpdatesChannel
	stopChan chan struct{}
	stopOnce sync.Once

	pendingMu     sync.Mutex
	pendingInputs map[string]string // chatID_messageID -> command
}

// NewTelegramBot creates a new Telegram bot instance. importingService may be nil when the inbox is disabled.
func NewTelegramBot(cfg *config.Manager, lyricsService *lyrics.Service, importingService *importing.Service) (*TelegramBot, error) {
	telegramConfig := cfg.Get().Telegram

	if !telegramConfig.Enabled {
		return nil, fmt.Errorf("telegram bot is disabled in configuration")
	}

	if telegramConfig.Token == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := tgbotapi.NewBotAPI(telegramConfig.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot initialized", "username", bot.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	telegramBot := &TelegramBot{
		bot:           bot,
		config:        cfg,
		handlers:      make(map[string]TelegramCommandHandler),
		updates:       bot.GetUpdatesChan(updateConfig),
		stopChan:      make(chan struct{}),
		pendingInputs: make(map[string]string),
	}

	telegramBot.RegisterHandler("lyrics", lyrics.NewTelegramHandler(lyricsService))
	telegramBot.RegisterHandler("config", config.NewTelegramHandler(cfg))
	if importingService != nil {
		telegramBot.RegisterHandler("importing", importing.NewTelegramHandler(importingService))
	}

	return telegramBot, nil
}

// RegisterHandler registers a feature's command handler
func (t *TelegramBot) RegisterHandler(feature string, handler TelegramCommandHandler) {
	t.handlers[feature] = handler
	slog.Debug("Registered Telegram handler", "feature", feature)
}

// Start begins listening for Telegram updates
func (t *TelegramBot) Start() {
	slog.Info("Starting Telegram bot listener")

	for {
		select {
		case update := <-t.updates:
			if update.Message != nil {
				go t.handleMessage(update)
			}
			if update.CallbackQuery != nil {
				go t.handleCallbackQuery(update)
			}
		case <-t.stopChan:
			slog.Info("Stopping Telegram bot listener")
			return
		}
	}
}

// Stop gracefully stops the bot
func (t *TelegramBot) Stop() {
	t.stopOnce.Do(func() {
		t.bot.StopReceivingUpdates()
		close(t.stopChan)
	})
}

// displayName is the Telegram username, or the full name for accounts without one.
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	name := user.FirstName
	if user.LastName != "" {
		name += " " + user.LastName
	}
	return name
}

func (t *TelegramBot) authorized(chatID int64, user *tgbotapi.User) bool {
	allowedUsers := t.config.Get().Telegram.AllowedUsers
	if len(allowedUsers) == 0 {
		slog.Warn("No allowed users configured", "chat_id", chatID)
		t.sendMessage(chatID, "❌ Access denied: No users configured. Please add users to the config.")
		return false
	}
	username := displayName(user)
	if !slices.Contains(allowedUsers, username) {
		slog.Warn("Unauthorized user", "username", username, "chat_id", chatID)
		t.sendMessage(chatID, "Unknown user, please add your user to the config")
		return false
	}
	return true
}

// handleMessage processes incoming messages
func (t *TelegramBot) handleMessage(update tgbotapi.Update) {
	message := update.Message
	chatID := message.Chat.ID

	if !t.authorized(chatID, message.From) {
		return
	}

	if message.IsCommand() {
		t.handleCommand(message)
		return
	}

	if message.ReplyToMessage != nil && t.handleReplyInput(message) {
		return
	}

	t.sendMessage(chatID, "🤖 Send /menu or /help to see available options")
}

// handleCommand processes bot commands
func (t *TelegramBot) handleCommand(message *tgbotapi.Message) {
	chatID := message.Chat.ID
	command := message.Command()
	args := message.CommandArguments()

	slog.Debug("Processing command", "command", command, "args", args, "chat_id", chatID)

	switch command {
	case "help":
		t.handleHelp(chatID)
	case "start", "menu":
		t.showMenu(chatID)
	default:
		if err := t.routeCommand(command, args, chatID); err != nil {
			slog.Error("Failed to handle command", "command", command, "error", err)
			t.sendMessage(chatID, "❌ Failed to process command")
		}
	}
}

// routeCommand routes commands to the appropriate feature handler
func (t *TelegramBot) routeCommand(command, args string, chatID int64) error {
	feature, exists := commandMap[command]
	if !exists {
		t.sendMessage(chatID, "❌ Unknown command. Send /help to see available commands.")
		return nil
	}

	handler, exists := t.handlers[feature]
	if !exists {
		t.sendMessage(chatID, fmt.Sprintf("❌ %s feature not available", escapeMarkdown(feature)))
		return nil
	}

	return handler.HandleCommand(t.bot, chatID, command, args)
}

// escapeMarkdown escapes special characters for safe Markdown usage
func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

var markdownEscaper = strings.NewReplacer(
	"`", "\\`", "*", "\\*", "_", "\\_", "[", "\\[", "]", "\\]",
	"(", "\\(", ")", "\\)", "~", "\\~", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

// sendMessage sends a message to the specified chat
func (t *TelegramBot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send message", "error", err, "chat_id", chatID)
	}
}

// handleCallbackQuery handles callback queries from inline keyboards
func (t *TelegramBot) handleCallbackQuery(update tgbotapi.Update) {
	callback := update.CallbackQuery
	if callback.Message == nil || !t.authorized(callback.Message.Chat.ID, callback.From) {
		return
	}

	if strings.HasPrefix(callback.Data, "menu_") {
		t.answerCallback(callback.ID)
		t.handleMenuCallback(callback.Message.Chat.ID, callback.Data)
		return
	}

	for _, handler := range t.handlers {
		if handler.HandleCallback(t.bot, callback) {
			return
		}
	}
	t.answerCallback(callback.ID)
}

func (t *TelegramBot) answerCallback(id string) {
	if _, err := t.bot.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Debug("Failed to answer callback", "error", err)
	}
}

// helpText lists every command the registered handlers expose.
func (t *TelegramBot) helpText() string {
	var b strings.Builder
	b.WriteString("*🎤 LyricsVault*\n\n/menu - Show the main menu\n")
	features := make([]string, 0, len(t.handlers))
	for feature := range t.handlers {
		features = append(features, feature)
	}
	slices.Sort(features)
	for _, feature := range features {
		commands := t.handlers[feature].GetCommands()
		names := make([]string, 0, len(commands))
		for name := range commands {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			fmt.Fprintf(&b, "/%s - %s\n", escapeMarkdown(name), commands[name])
		}
	}
	return b.String()
}

func (t *TelegramBot) handleHelp(chatID int64) {
	t.sendMessage(chatID, t.helpText())
}

// showMenu shows the main menu with an inline keyboard
func (t *TelegramBot) showMenu(chatID int64) {
	buttons := [][]tgbotapi.InlineKeyboardButton{
		{
			tgbotapi.NewInlineKeyboardButtonData("🎤 Find lyrics", "menu_lookup"),
			tgbotapi.NewInlineKeyboardButtonData("🔍 Search", "menu_search"),
		},
		{
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", "menu_stats"),
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Config", "menu_config"),
		},
	}
	if _, ok := t.handlers["importing"]; ok {
		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData("📋 Review queue", "menu_rejected"),
			tgbotapi.NewInlineKeyboardButtonData("📥 Scan inbox", "menu_scan"),
		})
	}

	msg := tgbotapi.NewMessage(chatID, "*🎤 LyricsVault*\n\nChoose an action below or use commands directly:")
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	if _, err := t.bot.Send(msg); err != nil {
		slog.Error("Failed to send menu", "error", err, "chat_id", chatID)
	}
}

// handleMenuCallback handles main menu callback queries
func (t *TelegramBot) handleMenuCallback(chatID int64, data string) {
	if command, ok := menuCommands[data]; ok {
		if err := t.routeCommand(command, "", chatID); err != nil {
			slog.Error("Failed to handle menu command", "command", command, "error", err)
			t.sendMessage(chatID, "❌ Failed to process menu selection")
		}
		return
	}
	if p, ok := menuPrompts[data]; ok {
		t.promptForInput(chatID, p.prompt, p.command)
		return
	}
	t.sendMessage(chatID, "❌ Unknown menu option")
}

// promptForInput sends a message that forces the user to reply with input
func (t *TelegramBot) promptForInput(chatID int64, promptText, command string) {
	msg := tgbotapi.NewMessage(chatID, promptText)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.ForceReply{ForceReply: true}

	sentMsg, err := t.bot.Send(msg)
	if err != nil {
		slog.Error("Failed to send prompt", "error", err)
		return
	}
	t.storePendingInput(chatID, sentMsg.MessageID, command)
}

func pendingKey(chatID int64, messageID int) string {
	return fmt.Sprintf("%d_%d", chatID, messageID)
}

func (t *TelegramBot) storePendingInput(chatID int64, messageID int, command string) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	t.pendingInputs[pendingKey(chatID, messageID)] = command
}

// takePendingInput returns and forgets the command waiting on a reply to messageID.
func (t *TelegramBot) takePendingInput(chatID int64, messageID int) (string, bool) {
	t.pendingMu.Lock()
	defer t.pendingMu.Unlock()
	key := pendingKey(chatID, messageID)
	command, ok := t.pendingInputs[key]
	delete(t.pendingInputs, key)
	return command, ok
}

// handleReplyInput runs the pending command with the reply text as its arguments.
func (t *TelegramBot) handleReplyInput(message *tgbotapi.Message) bool {
	chatID := message.Chat.ID
	command, ok := t.takePendingInput(chatID, message.ReplyToMessage.MessageID)
	if !ok {
		return false
	}
	if err := t.routeCommand(command, strings.TrimSpace(message.Text), chatID); err != nil {
		slog.Error("Failed to handle reply", "command", command, "error", err)
		t.sendMessage(chatID, "❌ Failed to process your reply")
	}
	return true
}
