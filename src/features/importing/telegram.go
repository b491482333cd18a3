package importing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	dismissCallbackPrefix = "rejected_dismiss:"
	// maxListedRejections caps how many items one /rejected reply shows.
	maxListedRejections = 5
)

// TelegramHandler handles Telegram commands for importing
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for importing
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// HandleCommand processes import-related Telegram commands
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "rejected":
		return h.handleRejected(bot, chatID)
	case "rejected_clear":
		text := "Review queue cleared"
		if err := h.service.ClearRejected(); err != nil {
			slog.Error("Failed to clear review queue", "error", err)
			text = "Failed to clear the review queue"
		}
		_, err := bot.Send(tgbotapi.NewMessage(chatID, text))
		return err
	case "scan":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		summary, err := h.service.ScanInbox(ctx)
		text := fmt.Sprintf("Inbox scanned: %d imported, %d rejected, %d already seen", summary.Accepted, summary.Rejected, summary.Skipped)
		if err != nil {
			text = "Inbox scan failed: " + err.Error()
		}
		_, err = bot.Send(tgbotapi.NewMessage(chatID, text))
		return err
	default:
		_, err := bot.Send(tgbotapi.NewMessage(chatID, "Unknown import command. Use /rejected"))
		return err
	}
}

// GetCommands returns the available commands for this handler
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"rejected":       "List inbox files that failed to import",
		"rejected_clear": "Empty the review queue",
		"scan":           "Import new files from the inbox now",
	}
}

// HandleCallback dismisses a rejected item when its button is pressed.
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	id, ok := strings.CutPrefix(callback.Data, dismissCallbackPrefix)
	if !ok {
		return false
	}
	text := "Dismissed"
	if err := h.service.DismissRejected(id); err != nil {
		text = "Already gone"
	}
	if _, err := bot.Request(tgbotapi.NewCallback(callback.ID, text)); err != nil {
		slog.Warn("Failed to answer callback", "error", err)
	}
	return true
}

func (h *TelegramHandler) handleRejected(bot *tgbotapi.BotAPI, chatID int64) error {
	items := h.service.GetRejected()
	if len(items) == 0 {
		_, err := bot.Send(tgbotapi.NewMessage(chatID, "Review queue is empty"))
		return err
	}

	header := fmt.Sprintf("%d rejected file(s)", len(items))
	if len(items) > maxListedRejections {
		header += fmt.Sprintf(", showing the oldest %d", maxListedRejections)
		items = items[:maxListedRejections]
	}
	if _, err := bot.Send(tgbotapi.NewMessage(chatID, header)); err != nil {
		return err
	}

	for _, item := range items {
		msg := tgbotapi.NewMessage(chatID, formatRejected(item))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Dismiss", dismissCallbackPrefix+item.ID),
		))
		if _, err := bot.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func formatRejected(item RejectedItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nreason: %s\n%s", filepath.Base(item.Path), item.Reason, item.Message)
	if item.Detail != "" {
		fmt.Fprintf(&b, "\n%s", item.Detail)
	}
	return b.String()
}
