package notify

import (
	"context"
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService posts cascade notices to the operations chat.
type TelegramService struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func NewTelegramService(botToken string, chatID int64) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramService{bot: bot, chatID: chatID}, nil
}

// NewTelegramServiceWithBot uses an already configured bot, e.g. one
// pointed at a custom API endpoint.
func NewTelegramServiceWithBot(bot *tgbotapi.BotAPI, chatID int64) *TelegramService {
	return &TelegramService{bot: bot, chatID: chatID}
}

func (t *TelegramService) NotifyCascade(_ context.Context, notice CascadeNotice) error {
	if t == nil || t.bot == nil || t.chatID == 0 {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, formatCascade(notice))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

func formatCascade(n CascadeNotice) string {
	return fmt.Sprintf("<b>%s #%d deactivated</b> (%s)\nName: %s\nContracts closed: %d [%s]",
		n.Cause, n.EntityID, n.EffectiveDate, html.EscapeString(n.EntityName), len(n.Contracts), contractIDs(n.Contracts))
}
