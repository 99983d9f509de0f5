package stats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/thunderoad/setlistd/src/setlist"
)

// TelegramHandler handles stats commands from the Telegram bot.
type TelegramHandler struct {
	service *Service
}

// NewTelegramHandler creates a new Telegram handler for the stats feature.
func NewTelegramHandler(service *Service) *TelegramHandler {
	return &TelegramHandler{service: service}
}

// GetCommands returns the commands this handler responds to.
func (h *TelegramHandler) GetCommands() map[string]string {
	return map[string]string{
		"rarest": "Show the ten rarest songs ever played",
		"song":   "Show play count and rarity for a song title",
		"recent": "Show the three most recent plays per song in a city",
	}
}

// HandleCallback handles feature-specific callbacks (none for stats).
func (h *TelegramHandler) HandleCallback(bot *tgbotapi.BotAPI, callback *tgbotapi.CallbackQuery) bool {
	return false
}

// HandleCommand dispatches a stats command.
func (h *TelegramHandler) HandleCommand(bot *tgbotapi.BotAPI, chatID int64, command string, args string) error {
	ctx := context.Background()
	switch command {
	case "rarest":
		return h.handleRarest(ctx, bot, chatID)
	case "song":
		return h.handleSong(ctx, bot, chatID, args)
	case "recent":
		return h.handleRecent(ctx, bot, chatID, args)
	default:
		return fmt.Errorf("unknown stats command: %s", command)
	}
}

func (h *TelegramHandler) handleRarest(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64) error {
	songs, err := h.service.GetGlobalStatistics(ctx)
	if err != nil {
		return err
	}

	// Played songs with the lowest rarity first.
	var played []*setlist.Song
	for _, song := range songs {
		if song.RarityLevel != nil {
			played = append(played, song)
		}
	}
	if len(played) == 0 {
		return send(bot, chatID, "No play data yet. Run an import first.")
	}
	sort.Slice(played, func(i, j int) bool {
		if *played[i].RarityLevel != *played[j].RarityLevel {
			return *played[i].RarityLevel < *played[j].RarityLevel
		}
		return played[i].Title < played[j].Title
	})
	if len(played) > 10 {
		played = played[:10]
	}

	var sb strings.Builder
	sb.WriteString("Rarest songs:\n")
	for _, song := range played {
		fmt.Fprintf(&sb, "%s: played %d times, rarity %d\n", song.Title, song.TimesPlayed, *song.RarityLevel)
	}
	return send(bot, chatID, sb.String())
}

func (h *TelegramHandler) handleSong(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64, args string) error {
	title := strings.TrimSpace(args)
	if title == "" {
		return send(bot, chatID, "Usage: /song <title>")
	}

	song, err := h.service.SongByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, setlist.ErrNotFound) {
			return send(bot, chatID, fmt.Sprintf("No song matching %q in the catalog.", title))
		}
		return err
	}
	if song.RarityLevel == nil {
		return send(bot, chatID, fmt.Sprintf("%s: never played.", song.Title))
	}
	return send(bot, chatID, fmt.Sprintf("%s: played %d times, rarity %d/100.", song.Title, song.TimesPlayed, *song.RarityLevel))
}

func (h *TelegramHandler) handleRecent(ctx context.Context, bot *tgbotapi.BotAPI, chatID int64, args string) error {
	city := strings.TrimSpace(args)
	if city == "" {
		return send(bot, chatID, "Usage: /recent <city>")
	}

	rows, err := h.service.RankedRecency(ctx, setlist.SongFilter{}, setlist.ShowFilter{City: city}, 3)
	if err != nil {
		return err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Most recent plays in %s:\n", city)
	shown := 0
	for _, row := range rows {
		if len(row.Dates) == 0 {
			continue
		}
		var dates []string
		for _, d := range row.Dates {
			dates = append(dates, d.Format(setlist.DateLayout))
		}
		fmt.Fprintf(&sb, "• %s: %s\n", row.Title, strings.Join(dates, ", "))
		shown++
	}
	if shown == 0 {
		return send(bot, chatID, fmt.Sprintf("No plays recorded in %s.", city))
	}
	return send(bot, chatID, sb.String())
}

func send(bot *tgbotapi.BotAPI, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := bot.Send(msg); err != nil {
		slog.Error("Failed to send Telegram message", "error", err)
		return err
	}
	return nil
}
