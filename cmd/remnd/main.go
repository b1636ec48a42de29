package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"remnd/internal/app"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", defaultConfigPath(), "path to config yaml/json")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := dispatch(ctx, a, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func dispatch(ctx context.Context, a *app.App, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		var note, every string
		fs.StringVar(&note, "note", "", "optional note")
		fs.StringVar(&note, "n", "", "optional note (shorthand)")
		fs.StringVar(&every, "every", "", `repeat cadence like "1d" or "2mo"`)
		_ = fs.Parse(rest)
		if fs.NArg() != 2 {
			return errors.New(`usage: remnd add [-n note] [-every step] <when> <text>`)
		}
		return a.Add(ctx, fs.Arg(0), fs.Arg(1), note, every)

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		var all bool
		fs.BoolVar(&all, "all", false, "include completed reminders")
		fs.BoolVar(&all, "a", false, "include completed reminders (shorthand)")
		_ = fs.Parse(rest)
		return a.List(ctx, all)

	case "comp":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return a.Complete(ctx, id)

	case "del":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		return a.Delete(ctx, id)

	case "run":
		if len(rest) != 1 {
			return errors.New("usage: remnd run <minute|renotify|catchup>")
		}
		return a.RunMode(ctx, rest[0])

	case "daemon":
		return a.Daemon(ctx)

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one reminder id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad reminder id %q", args[0])
	}
	return id, nil
}

func defaultConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./remnd.yaml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "remnd", "remnd.yaml")
}

func usage() {
	fmt.Fprint(os.Stderr, `remnd - reminders that fire as notifications

Usage:
  remnd [-config path] <command> [args]

Commands:
  add [-n note] [-every step] <when> <text>
        Schedule a reminder. <when> accepts "10m", "2d4h", "1mo",
        "today 17:30", "tomorrow 08:00", "17:30", "25-12 09:00",
        "25-12-2026". Steps: m/h/d/w/mo.
  list [-all]
        Show reminders.
  comp <id>
        Mark done (recurring reminders reschedule instead).
  del <id>
        Delete.
  run <minute|renotify|catchup>
        One scheduling pass (for external timers).
  daemon
        Run the built-in triggers until interrupted.
`)
}
