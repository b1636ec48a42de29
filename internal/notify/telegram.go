package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"remnd/internal/config"
	"remnd/pkg/logx"
)

// telegram delivers reminders to a chat. Send-only: no poller runs.
type telegram struct {
	bot  *tele.Bot
	chat tele.ChatID
	log  logx.Logger
}

func newTelegram(cfg config.TelegramNotifyConfig, log logx.Logger) (*telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, err
	}
	return &telegram{bot: b, chat: tele.ChatID(cfg.ChatID), log: log}, nil
}

func (t *telegram) Notify(_ context.Context, title, body string) error {
	text := "⏰ " + title
	if body != "" {
		text += "\n" + body
	}
	start := time.Now()
	_, err := t.bot.Send(t.chat, text)
	if err != nil {
		return err
	}
	t.log.Debug("notification delivered",
		logx.String("via", "telegram"), logx.Duration("took", time.Since(start)))
	return nil
}
