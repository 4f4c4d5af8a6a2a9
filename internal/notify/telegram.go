package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier delivers notifications as Telegram messages to one chat.
// Without a token or chat ID it stays in a not-ready state and is skipped.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zerolog.Logger
}

// NewTelegramNotifier creates the channel. An empty token yields a not-ready
// notifier rather than an error, so an unconfigured channel degrades to a
// silent no-op.
func NewTelegramNotifier(token string, chatID int64, logger *zerolog.Logger) (*TelegramNotifier, error) {
	n := &TelegramNotifier{chatID: chatID, logger: logger}
	if token == "" {
		return n, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	n.bot = bot
	return n, nil
}

// NewTelegramNotifierWithBot reuses an already authorized bot, so the command
// surface and the notifier share one session.
func NewTelegramNotifierWithBot(bot *tgbotapi.BotAPI, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}
}

func (n *TelegramNotifier) Name() string { return "telegram" }

func (n *TelegramNotifier) Ready() bool { return n.bot != nil && n.chatID != 0 }

func (n *TelegramNotifier) Notify(_ context.Context, notification Notification) error {
	msg := tgbotapi.NewMessage(n.chatID,
		fmt.Sprintf("%s\n%s\nScheduled for %s", notification.Title, notification.Body, notification.Slot))
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram notification: %w", err)
	}
	return nil
}
