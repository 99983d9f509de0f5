package importing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramHandler handles import commands from the Telegram bot.
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the importing feature.
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// GetCommands returns the commands this handler responds to.
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"import":  "Ingest the CSV files from the configured import path",
		"watcher": "Start or stop the import directory watcher",
	}
}

// HandleCallback handles feature-specific callbacks (none for importing).
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

// HandleCommand dispatches an importing command.
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	switch command {
	case "import":
		return h.handleImport(bot, chatID)
	case "watcher":
		return h.handleWatcher(bot, chatID, args)
	default:
		return fmt.Errorf("unknown importing command: %s", command)
	}
}

func (h *TelegramHandler) handleImport(bot *tgbotapi.BotAPI, chatID int64) error {
	result, err := h.service.Run(context.Background())
	if err != nil {
		return sendText(bot, chatID, fmt.Sprintf("Import failed: %v", err))
	}
	return sendText(bot, chatID, fmt.Sprintf(
		"Import finished.\nSongs: %d added, %d skipped\nShows: %d added, %d skipped\nPerformances: %d added, %d skipped",
		result.SongsAdded, result.SongsSkipped,
		result.ShowsAdded, result.ShowsSkipped,
		result.PerformancesAdded, result.PerformancesSkipped))
}

func (h *TelegramHandler) handleWatcher(bot *tgbotapi.BotAPI, chatID int64, args string) error {
	switch strings.TrimSpace(args) {
	case "start":
		if err := h.service.StartWatcher(context.Background()); err != nil {
			return sendText(bot, chatID, fmt.Sprintf("Failed to start watcher: %v", err))
		}
		return sendText(bot, chatID, "Watcher started.")
	case "stop":
		h.service.StopWatcher()
		return sendText(bot, chatID, "Watcher stopped.")
	default:
		return sendText(bot, chatID, "Usage: /watcher <start|stop>")
	}
}

func sendText(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := bot.Send(msg); err != nil {
		slog.Error("Failed to send Telegram message", "error", err)
		return err
	}
	return nil
}
