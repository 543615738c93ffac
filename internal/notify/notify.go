// Package notify pushes new-reply alerts to Telegram.
package notify

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"x_monitor/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends new-reply alerts to a single chat.
type Telegram struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// NewTelegram creates a notifier for the given bot token and chat.
func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

// NotifyNewReplies sends one message covering all the new replies.
// Notifications are best-effort: send failures only log.
func (t *Telegram) NotifyNewReplies(tweetURL string, replies []model.Reply) {
	if len(replies) == 0 {
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, FormatNewReplies(tweetURL, replies))
	msg.DisableWebPagePreview = true
	if _, err := t.api.Send(msg); err != nil {
		t.log.Error("send notification", "chat_id", t.chatID, "error", err)
	}
}

// FormatNewReplies formats new replies as a plain-text alert message.
func FormatNewReplies(tweetURL string, replies []model.Reply) string {
	var b strings.Builder
	if len(replies) == 1 {
		b.WriteString("1 new reply to ")
	} else {
		fmt.Fprintf(&b, "%d new replies to ", len(replies))
	}
	b.WriteString(tweetURL)
	b.WriteString("\n")

	for _, r := range replies {
		b.WriteString("\n")
		b.WriteString(r.AuthorHandle)
		if r.DisplayName != "" && r.DisplayName != r.AuthorHandle {
			fmt.Fprintf(&b, " (%s)", r.DisplayName)
		}
		if r.IsQuestion {
			b.WriteString(" [question]")
		}
		b.WriteString(":\n")
		b.WriteString(r.Text)
		b.WriteString("\n")
	}
	return b.String()
}
