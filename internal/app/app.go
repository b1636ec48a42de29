// Package app wires configuration, storage, notification and the
// scheduling engine behind the CLI commands.
package app

import (
	"remnd/internal/config"
	"remnd/internal/remind"
	"remnd/internal/storage"
	"remnd/pkg/logx"
)

type App struct {
	cfg    *config.Config
	man    *config.Manager
	logSvc *logx.Service
	log    logx.Logger
	store  *storage.Store
	clock  remind.Clock
}

func New(cfgPath string) (*App, error) {
	man := config.NewManager(cfgPath)
	cfg, err := man.Load()
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(loggingConfig(cfg))
	man.SetLogger(log)

	store, err := storage.Open(storage.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: config.MustDuration("storage.busy_timeout", cfg.Storage.BusyTimeout),
	}, log.With(logx.String("component", "storage")))
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	return &App{
		cfg:    cfg,
		man:    man,
		logSvc: logSvc,
		log:    log,
		store:  store,
		clock:  remind.SystemClock{},
	}, nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logSvc != nil {
		_ = a.logSvc.Close()
	}
}

func loggingConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console == nil || *cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}
