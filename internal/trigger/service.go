// Package trigger hosts the daemon's three trigger surfaces: the
// minute check, the coarse re-notify timer and the one-shot catch-up
// after start. It owns cadence only; what a mode means is the
// scheduling engine's business.
package trigger

import (
	"context"
	"sync"
	"time"

	sdaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	"remnd/internal/remind"
	"remnd/pkg/logx"
)

type Config struct {
	MinuteSpec   string
	RenotifySpec string
	CatchupDelay time.Duration
}

// Runner executes one engine invocation for a mode. The trigger
// service never inspects the result; failures are the runner's to log.
type Runner func(ctx context.Context, mode remind.Mode)

type Service struct {
	log    logx.Logger
	runner Runner

	mu      sync.Mutex
	cfg     Config
	c       *cron.Cron
	catchup *time.Timer
	runCtx  context.Context
	cancel  context.CancelFunc
}

func New(cfg Config, runner Runner, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{cfg: cfg, runner: runner, log: log}
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return nil
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	if err := s.startLocked(); err != nil {
		s.cancel()
		s.runCtx, s.cancel = nil, nil
		return err
	}

	// Catch-up fires once, shortly after start, so everything that went
	// due while the process was down surfaces immediately.
	delay := s.cfg.CatchupDelay
	runCtx := s.runCtx
	s.catchup = time.AfterFunc(delay, func() {
		if runCtx.Err() != nil {
			return
		}
		s.runner(runCtx, remind.ModeCatchup)
	})

	// Tell systemd we're up; harmless elsewhere.
	if sent, err := sdaemon.SdNotify(false, sdaemon.SdNotifyReady); err != nil {
		s.log.Debug("sd_notify failed", logx.Err(err))
	} else if sent {
		s.log.Debug("sd_notify ready sent")
	}
	return nil
}

func (s *Service) startLocked() error {
	c := cron.New()
	runCtx := s.runCtx
	if _, err := c.AddFunc(s.cfg.MinuteSpec, func() {
		s.runner(runCtx, remind.ModeMinute)
	}); err != nil {
		return err
	}
	if _, err := c.AddFunc(s.cfg.RenotifySpec, func() {
		s.runner(runCtx, remind.ModeRenotify)
	}); err != nil {
		return err
	}
	c.Start()
	s.c = c
	s.log.Info("triggers started",
		logx.String("minute", s.cfg.MinuteSpec),
		logx.String("renotify", s.cfg.RenotifySpec),
		logx.Duration("catchup_delay", s.cfg.CatchupDelay))
	return nil
}

// Apply swaps cadence specs at runtime (config hot reload). The
// catch-up shot is not re-armed; it is a per-session event.
func (s *Service) Apply(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cfg.MinuteSpec == s.cfg.MinuteSpec && cfg.RenotifySpec == s.cfg.RenotifySpec {
		s.cfg.CatchupDelay = cfg.CatchupDelay
		return nil
	}
	s.cfg = cfg
	if s.c == nil {
		return nil
	}
	<-s.c.Stop().Done()
	s.c = nil
	return s.startLocked()
}

func (s *Service) Stop(ctx context.Context) {
	_, _ = sdaemon.SdNotify(false, sdaemon.SdNotifyStopping)

	s.mu.Lock()
	c := s.c
	s.c = nil
	if s.catchup != nil {
		s.catchup.Stop()
		s.catchup = nil
	}
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c == nil {
		return
	}
	// Wait for in-flight jobs, bounded by ctx.
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("triggers stopped")
}
