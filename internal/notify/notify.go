// Package notify delivers reminder notifications.
//
// Backends are deliberately dumb: one Notify call, one delivery
// attempt. Retry policy belongs to the scheduling engine's re-notify
// window, not here.
package notify

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"

	"remnd/internal/config"
	"remnd/internal/remind"
	"remnd/pkg/logx"
)

// New builds the configured backend wrapped in a rate limiter.
func New(cfg config.NotifyConfig, log logx.Logger) (remind.Notifier, error) {
	var (
		n   remind.Notifier
		err error
	)
	switch strings.ToLower(cfg.Backend) {
	case "command":
		n, err = newCommand(cfg.Command, log)
	case "telegram":
		n, err = newTelegram(cfg.Telegram, log)
	case "none":
		n = logOnly{log: log}
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 3
	}
	// Burst = rate per sec, so a catch-up batch doesn't stall hard.
	return &limited{next: n, lim: rate.NewLimiter(rate.Limit(rps), rps)}, nil
}

// limited paces deliveries; it waits rather than drops, since a run's
// batch is bounded by the reminder count.
type limited struct {
	next remind.Notifier
	lim  *rate.Limiter
}

func (l *limited) Notify(ctx context.Context, title, body string) error {
	if err := l.lim.Wait(ctx); err != nil {
		return err
	}
	return l.next.Notify(ctx, title, body)
}

// logOnly is the "none" backend: surfaces reminders in the log stream
// only. Useful on headless hosts and in tests.
type logOnly struct {
	log logx.Logger
}

func (n logOnly) Notify(_ context.Context, title, body string) error {
	n.log.Info("reminder due", logx.String("title", title), logx.String("note", body))
	return nil
}
