// Package bot delivers the daily digest through the Telegram Bot API.
package bot

import (
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot sends summaries to a single chat.
type Bot struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
	pause  time.Duration
}

// New creates a Bot with the given Telegram token and target chat.
func New(token string, chatID int64, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newWithAPI(api, chatID, log), nil
}

func newWithAPI(api telegramAPI, chatID int64, log *slog.Logger) *Bot {
	return &Bot{
		api:    api,
		chatID: chatID,
		log:    log,
		// Rate limit: ~20 messages/sec max for Telegram
		pause: 50 * time.Millisecond,
	}
}

// SendDocument uploads the file at path with a caption.
func (b *Bot) SendDocument(path, caption string) error {
	doc := tgbotapi.NewDocument(b.chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	if _, err := b.api.Send(doc); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	b.log.Info("summary sent as file", "chat_id", b.chatID, "path", path)
	return nil
}

// SendMessages sends each text as a separate Markdown message with link
// previews disabled. It stops at the first failure.
func (b *Bot) SendMessages(texts []string) error {
	for i, text := range texts {
		if i > 0 && b.pause > 0 {
			time.Sleep(b.pause)
		}
		msg := tgbotapi.NewMessage(b.chatID, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		msg.DisableWebPagePreview = true
		if _, err := b.api.Send(msg); err != nil {
			return fmt.Errorf("send message %d/%d: %w", i+1, len(texts), err)
		}
	}
	b.log.Info("summary sent as messages", "chat_id", b.chatID, "count", len(texts))
	return nil
}
