package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return NewManager(path)
}

func TestLoadYAML(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "remnd.yaml", `
logging:
  level: debug
storage:
  path: /tmp/test-remnd.sqlite3
notify:
  backend: command
  command:
    name: notify-send
    args: ["-u", "critical"]
  rate_per_sec: 5
trigger:
  renotify_spec: "30 * * * *"
`)
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("Level = %q", cfg.Logging.Level)
	}
	if cfg.Storage.Path != "/tmp/test-remnd.sqlite3" {
		t.Fatalf("Path = %q", cfg.Storage.Path)
	}
	if got := cfg.Notify.Command.Args; len(got) != 2 || got[0] != "-u" {
		t.Fatalf("Args = %v", got)
	}
	if cfg.Notify.RatePerSec != 5 {
		t.Fatalf("RatePerSec = %d", cfg.Notify.RatePerSec)
	}
	// Omitted fields pick up defaults.
	if cfg.Trigger.MinuteSpec != "* * * * *" {
		t.Fatalf("MinuteSpec = %q", cfg.Trigger.MinuteSpec)
	}
	if cfg.Trigger.RenotifySpec != "30 * * * *" {
		t.Fatalf("RenotifySpec = %q", cfg.Trigger.RenotifySpec)
	}
	if cfg.Storage.BusyTimeout != "5s" {
		t.Fatalf("BusyTimeout = %q", cfg.Storage.BusyTimeout)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "remnd.yaml", "loging:\n  level: debug\n")
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "remnd.yaml", "storage:\n  busy_timeout: soon\n")
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for bad duration")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	m := NewManager(filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := m.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notify.Backend != "command" || cfg.Notify.Command.Name != "notify-send" {
		t.Fatalf("unexpected defaults: %+v", cfg.Notify)
	}
	if m.Get() != cfg {
		t.Fatal("Load must commit the defaults")
	}
}

func TestTelegramBackendRequiresTarget(t *testing.T) {
	t.Parallel()
	m := writeConfig(t, "remnd.yaml", "notify:\n  backend: telegram\n")
	if _, err := m.Load(); err == nil {
		t.Fatal("expected error for telegram backend without token")
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	if d, err := ParseDurationField("x", "90s"); err != nil || d.Seconds() != 90 {
		t.Fatalf("got (%v, %v)", d, err)
	}
	if d, err := ParseDurationField("x", ""); err != nil || d != 0 {
		t.Fatalf("empty: got (%v, %v)", d, err)
	}
	if _, err := ParseDurationField("x", "-1s"); err == nil {
		t.Fatal("expected error for negative duration")
	}
}
