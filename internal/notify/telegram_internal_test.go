package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type stubSender struct {
	mu     sync.Mutex
	params []*bot.SendMessageParams
	err    error
}

func (s *stubSender) SendMessage(
	_ context.Context,
	params *bot.SendMessageParams,
) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = append(s.params, params)

	if s.err != nil {
		return nil, s.err
	}

	return &models.Message{ID: len(s.params)}, nil
}

func (s *stubSender) sent() []*bot.SendMessageParams {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*bot.SendMessageParams(nil), s.params...)
}

func TestNotifySendsPreformattedMessage(t *testing.T) {
	sender := &stubSender{}
	tg := newTelegram(sender, 42, slog.Default())

	if err := tg.Notify(context.Background(), "llama3:8b https://example.com/a 1.200s (3/3)"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.sent()
	if len(sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sent))
	}

	msg := sent[0]
	if msg.ChatID != int64(42) || msg.ParseMode != models.ParseModeMarkdown {
		t.Fatalf("unexpected message params: %+v", msg)
	}

	if !strings.HasPrefix(msg.Text, "```\n") || !strings.Contains(msg.Text, "1.200s") {
		t.Fatalf("unexpected message text: %q", msg.Text)
	}
}

func TestNotifySplitsLongText(t *testing.T) {
	sender := &stubSender{}
	tg := newTelegram(sender, 42, slog.Default())
	tg.limiter = nil

	line := strings.Repeat("x", 99)
	text := strings.Repeat(line+"\n", 60)

	if err := tg.Notify(context.Background(), text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := sender.sent()
	if len(sent) != 2 {
		t.Fatalf("expected two messages, got %d", len(sent))
	}

	for _, msg := range sent {
		if len(msg.Text) > 4096 {
			t.Fatalf("message exceeds Telegram limit: %d", len(msg.Text))
		}
	}
}

func TestNotifySkipsEmptyText(t *testing.T) {
	sender := &stubSender{}
	tg := newTelegram(sender, 42, slog.Default())

	if err := tg.Notify(context.Background(), "   "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.sent()) != 0 {
		t.Fatalf("expected no messages")
	}
}

func TestNotifyReturnsSendError(t *testing.T) {
	sender := &stubSender{err: errors.New("chat not found")}
	tg := newTelegram(sender, -100, slog.Default())

	if err := tg.Notify(context.Background(), "hello"); err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestChatRate(t *testing.T) {
	if got := chatRate("42"); got != time.Second {
		t.Fatalf("unexpected private chat rate: %v", got)
	}

	if got := chatRate("-100123"); got != 3*time.Second {
		t.Fatalf("unexpected group chat rate: %v", got)
	}
}

func TestNewTelegramValidatesInput(t *testing.T) {
	if _, err := NewTelegram(" ", 42, slog.Default()); err == nil {
		t.Fatalf("expected error for empty token")
	}

	if _, err := NewTelegram("123:abc", 0, slog.Default()); err == nil {
		t.Fatalf("expected error for empty chat ID")
	}
}
