package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"cryptoconvert/config"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

// go test -v --run TestTelegramNotifyContact
func TestTelegramNotifyContact(t *testing.T) {
	fake := &fakeSender{}
	tg := &Telegram{api: fake, chatID: 42}

	err := tg.NotifyContact(context.Background(), Contact{
		Name: "Ann", Email: "ann@example.com", Subject: "Hello", Message: "Great site", FormType: "contact",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fake.sent))
	}
	msg := fake.sent[0]
	if msg.ChatID != 42 {
		t.Errorf("chat id = %d", msg.ChatID)
	}
	for _, want := range []string{"Ann <ann@example.com>", "Subject: Hello", "Great site"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message %q missing %q", msg.Text, want)
		}
	}

	fake.err = errors.New("bad gateway")
	if err := tg.NotifyContact(context.Background(), Contact{}); err == nil {
		t.Error("expected send error")
	}
}

// go test -v --run TestNewWithoutToken
func TestNewWithoutToken(t *testing.T) {
	n := New(config.TelegramConfig{}, zap.NewNop())
	if _, ok := n.(Nop); !ok {
		t.Fatalf("expected Nop notifier, got %T", n)
	}
	if err := n.NotifyContact(context.Background(), Contact{}); err != nil {
		t.Errorf("nop notify: %v", err)
	}
}
