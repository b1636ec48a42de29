package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"remnd/internal/config"
	"remnd/pkg/logx"
)

// command spawns a notifier binary (notify-send style): configured
// args first, then title and body as the final two arguments.
type command struct {
	name string
	args []string
	log  logx.Logger
}

const commandTimeout = 10 * time.Second

func newCommand(cfg config.CommandNotifyConfig, log logx.Logger) (*command, error) {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, errors.New("notify.command.name is empty")
	}
	return &command{name: name, args: cfg.Args, log: log}, nil
}

func (c *command) Notify(ctx context.Context, title, body string) error {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	argv := append(append([]string(nil), c.args...), title)
	if body != "" {
		argv = append(argv, body)
	}
	cmd := exec.CommandContext(ctx, c.name, argv...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", c.name, err, msg)
		}
		return fmt.Errorf("%s: %w", c.name, err)
	}
	c.log.Debug("notification delivered", logx.String("via", c.name), logx.String("title", title))
	return nil
}
