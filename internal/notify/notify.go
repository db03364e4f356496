// Package notify forwards new contact submissions to operators.
package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptoconvert/config"
)

// Contact is the part of a submission that is worth a notification.
type Contact struct {
	Name     string
	Email    string
	Subject  string
	Message  string
	FormType string
	Source   string
}

type Notifier interface {
	NotifyContact(ctx context.Context, c Contact) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) NotifyContact(context.Context, Contact) error { return nil }

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Telegram struct {
	api    sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

func (t *Telegram) NotifyContact(ctx context.Context, c Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(t.chatID, formatContact(c))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatContact(c Contact) string {
	var b strings.Builder
	fmt.Fprintf(&b, "New %s submission\n", c.FormType)
	fmt.Fprintf(&b, "From: %s <%s>\n", c.Name, c.Email)
	if c.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", c.Subject)
	}
	if c.Source != "" {
		fmt.Fprintf(&b, "Page: %s\n", c.Source)
	}
	b.WriteString("\n")
	b.WriteString(c.Message)
	return b.String()
}

// New returns a Telegram notifier when a bot token and chat id are
// configured, and Nop otherwise or when the bot cannot be created.
func New(cfg config.TelegramConfig, logger *zap.Logger) Notifier {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return Nop{}
	}
	tg, err := NewTelegram(cfg.BotToken, cfg.ChatID)
	if err != nil {
		logger.Warn("telegram notifications disabled", zap.Error(err))
		return Nop{}
	}
	return tg
}
