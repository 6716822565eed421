// Package notify delivers benchmark digests to chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"articlebench/internal/markdown"
	"articlebench/internal/ratelimiter"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	privateChatRate = time.Second
	groupChatRate   = 3 * time.Second

	// Leaves room for the pre block markers and escapes.
	maxChunkLen = 3800
)

// Notifier sends a plain-text digest somewhere a human will read it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type Telegram struct {
	sender  messageSender
	chatID  int64
	limiter *ratelimiter.RateLimiter
	log     *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("telegram token is empty")
	}

	if chatID == 0 {
		return nil, errors.New("telegram chat ID is empty")
	}

	b, err := bot.New(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return newTelegram(b, chatID, log), nil
}

func newTelegram(sender messageSender, chatID int64, log *slog.Logger) *Telegram {
	return &Telegram{
		sender:  sender,
		chatID:  chatID,
		limiter: ratelimiter.New(chatRate, log),
		log:     log,
	}
}

// Notify sends text as one or more preformatted messages.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	chatKey := strconv.FormatInt(t.chatID, 10)
	disablePreview := true
	chunks := markdown.Split(text, maxChunkLen)

	for i, chunk := range chunks {
		if err := t.limiter.Wait(ctx, chatKey); err != nil {
			return fmt.Errorf("wait for rate limiter: %w", err)
		}

		_, err := t.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:             t.chatID,
			Text:               markdown.Pre(chunk),
			ParseMode:          models.ParseModeMarkdown,
			LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: &disablePreview},
		})
		if err != nil {
			return fmt.Errorf("send message (chunk %d/%d): %w", i+1, len(chunks), err)
		}
	}

	t.log.InfoContext(ctx, "Notification is sent",
		"chatID", t.chatID,
		"messages", len(chunks))

	return nil
}

// Group and supergroup chat IDs are negative.
func chatRate(key string) time.Duration {
	if strings.HasPrefix(key, "-") {
		return groupChatRate
	}

	return privateChatRate
}
