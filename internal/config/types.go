package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the remnd configuration file schema. Files may be YAML or
// JSON; unknown keys are rejected so typos surface immediately.
//
// All duration fields are Go duration strings (e.g. "5s", "1m").
type Config struct {
	Logging LoggingConfig `json:"logging,omitempty"`
	Storage StorageConfig `json:"storage,omitempty"`
	Notify  NotifyConfig  `json:"notify,omitempty"`
	Trigger TriggerConfig `json:"trigger,omitempty"`
}

type LoggingConfig struct {
	Level string `json:"level,omitempty"` // trace|debug|info|warn|error

	// Console is a pointer so "omitted" (default true) is distinct
	// from an explicit false.
	Console *bool         `json:"console,omitempty"`
	File    LogFileConfig `json:"file,omitempty"`
}

type LogFileConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
}

// StorageConfig locates the reminder database.
type StorageConfig struct {
	Path        string `json:"path,omitempty"`         // default: state dir
	BusyTimeout string `json:"busy_timeout,omitempty"` // sqlite lock wait
}

// NotifyConfig selects the notification backend.
//
// Backends:
//   - "command": spawn an argv (notify-send style); title and body are
//     appended as the final two arguments.
//   - "telegram": send to a chat via bot token.
//   - "none": log-only (useful on headless hosts).
type NotifyConfig struct {
	Backend    string               `json:"backend,omitempty"`
	Command    CommandNotifyConfig  `json:"command,omitempty"`
	Telegram   TelegramNotifyConfig `json:"telegram,omitempty"`
	RatePerSec int                  `json:"rate_per_sec,omitempty"`
}

type CommandNotifyConfig struct {
	Name string   `json:"name,omitempty"`
	Args []string `json:"args,omitempty"`
}

type TelegramNotifyConfig struct {
	Token  string `json:"token,omitempty"`
	ChatID int64  `json:"chat_id,omitempty"`
}

// TriggerConfig sets the daemon cadences. Specs are robfig/cron
// expressions (descriptors like "@hourly" allowed).
type TriggerConfig struct {
	MinuteSpec   string `json:"minute_spec,omitempty"`
	RenotifySpec string `json:"renotify_spec,omitempty"`
	CatchupDelay string `json:"catchup_delay,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Storage: StorageConfig{Path: DefaultDBPath(), BusyTimeout: "5s"},
		Notify: NotifyConfig{
			Backend:    "command",
			Command:    CommandNotifyConfig{Name: "notify-send", Args: []string{"-a", "remnd"}},
			RatePerSec: 3,
		},
		Trigger: TriggerConfig{
			MinuteSpec:   "* * * * *",
			RenotifySpec: "@hourly",
			CatchupDelay: "5s",
		},
	}
}

// DefaultDBPath follows the XDG state-dir convention the original
// store used: $XDG_STATE_HOME/remnd/remnd.sqlite3.
func DefaultDBPath() string {
	state := os.Getenv("XDG_STATE_HOME")
	if state == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "remnd.sqlite3"
		}
		state = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(state, "remnd", "remnd.sqlite3")
}

// Normalize fills defaults into zero fields and validates the rest.
func (c *Config) Normalize() error {
	def := Default()
	if strings.TrimSpace(c.Storage.Path) == "" {
		c.Storage.Path = def.Storage.Path
	}
	if strings.TrimSpace(c.Storage.BusyTimeout) == "" {
		c.Storage.BusyTimeout = def.Storage.BusyTimeout
	}
	if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
		return err
	}

	switch b := strings.ToLower(strings.TrimSpace(c.Notify.Backend)); b {
	case "":
		c.Notify.Backend = def.Notify.Backend
		if c.Notify.Command.Name == "" {
			c.Notify.Command = def.Notify.Command
		}
	case "command":
		if strings.TrimSpace(c.Notify.Command.Name) == "" {
			c.Notify.Command = def.Notify.Command
		}
	case "telegram":
		if strings.TrimSpace(c.Notify.Telegram.Token) == "" {
			return fmt.Errorf("notify.telegram.token is required for the telegram backend")
		}
		if c.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("notify.telegram.chat_id is required for the telegram backend")
		}
		c.Notify.Backend = "telegram"
	case "none":
		c.Notify.Backend = "none"
	default:
		return fmt.Errorf("unknown notify.backend %q", c.Notify.Backend)
	}
	if c.Notify.RatePerSec <= 0 {
		c.Notify.RatePerSec = def.Notify.RatePerSec
	}

	if strings.TrimSpace(c.Trigger.MinuteSpec) == "" {
		c.Trigger.MinuteSpec = def.Trigger.MinuteSpec
	}
	if strings.TrimSpace(c.Trigger.RenotifySpec) == "" {
		c.Trigger.RenotifySpec = def.Trigger.RenotifySpec
	}
	if strings.TrimSpace(c.Trigger.CatchupDelay) == "" {
		c.Trigger.CatchupDelay = def.Trigger.CatchupDelay
	}
	if _, err := ParseDurationField("trigger.catchup_delay", c.Trigger.CatchupDelay); err != nil {
		return err
	}
	return nil
}
