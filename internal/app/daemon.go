package app

import (
	"context"
	"sync/atomic"
	"time"

	"remnd/internal/config"
	"remnd/internal/notify"
	"remnd/internal/remind"
	"remnd/internal/trigger"
	"remnd/pkg/logx"
)

// Daemon runs the long-lived host: cron-driven minute and re-notify
// triggers, a one-shot catch-up after start, and config hot reload.
// Blocks until ctx is cancelled.
func (a *App) Daemon(ctx context.Context) error {
	first, err := a.buildEngine(a.cfg)
	if err != nil {
		return err
	}
	var engine atomic.Pointer[remind.Engine]
	engine.Store(first)

	runner := func(ctx context.Context, mode remind.Mode) {
		now := a.clock.Now().Truncate(time.Second)
		if _, err := engine.Load().Run(ctx, mode, now); err != nil {
			a.log.Error("trigger run failed",
				logx.String("mode", string(mode)), logx.Err(err))
		}
	}

	trg := trigger.New(triggerConfig(a.cfg), runner, a.log.With(logx.String("component", "trigger")))
	if err := trg.Start(ctx); err != nil {
		return err
	}

	// Hot reload: logging and notify apply in place, cadences restart.
	updates := a.man.Subscribe(1)
	defer a.man.Unsubscribe(updates)
	go func() {
		if err := a.man.Watch(ctx); err != nil {
			a.log.Warn("config watch unavailable", logx.Err(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			trg.Stop(stopCtx)
			cancel()
			return nil
		case cfg := <-updates:
			a.logSvc.Apply(loggingConfig(cfg))
			if e, err := a.buildEngine(cfg); err != nil {
				a.log.Warn("config change kept previous notifier", logx.Err(err))
			} else {
				engine.Store(e)
			}
			if err := trg.Apply(triggerConfig(cfg)); err != nil {
				a.log.Warn("config change kept previous cadences", logx.Err(err))
			}
			a.cfg = cfg
		}
	}
}

func (a *App) buildEngine(cfg *config.Config) (*remind.Engine, error) {
	notifier, err := notify.New(cfg.Notify, a.log.With(logx.String("component", "notify")))
	if err != nil {
		return nil, err
	}
	return remind.NewEngine(a.store, notifier, a.log.With(logx.String("component", "engine"))), nil
}

func triggerConfig(cfg *config.Config) trigger.Config {
	return trigger.Config{
		MinuteSpec:   cfg.Trigger.MinuteSpec,
		RenotifySpec: cfg.Trigger.RenotifySpec,
		CatchupDelay: config.MustDuration("trigger.catchup_delay", cfg.Trigger.CatchupDelay),
	}
}
