package profile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/deck-scripts/internal/format"
)

// DefaultServices are tried in order when restarting the UI.
var DefaultServices = []string{"streamdeck-ui", "streamdeck"}

// ErrNoService is returned when no candidate service could be restarted.
var ErrNoService = errors.New("no StreamDeck UI service found to restart")

// Guidance is printed when ErrNoService is returned.
var Guidance = []string{
	"No StreamDeck UI service found to restart.",
	"You may need to start streamdeck-ui manually or install it as a service.",
	"Try running: streamdeck-ui --device 0",
}

// systemctlCommand is the service manager binary. Overridable for testing.
var systemctlCommand = "systemctl"

// Restarter restarts the first user service that accepts a restart.
type Restarter struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewRestarter creates a Restarter bounding each systemctl call by timeout.
// A non-positive timeout means 10 seconds. If logger is nil, a no-op logger
// is used.
func NewRestarter(timeout time.Duration, logger *slog.Logger) *Restarter {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Restarter{timeout: timeout, logger: logger}
}

// Restart tries each service in order and returns the one restarted. The
// is-active result only feeds the log; a restart is attempted regardless.
func (r *Restarter) Restart(ctx context.Context, services []string) (string, error) {
	for _, name := range format.UniqueStrings(services) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		state, _ := r.systemctl(ctx, "is-active", name)
		r.logger.Debug("service state", "service", name, "state", state)

		if _, err := r.systemctl(ctx, "restart", name); err != nil {
			r.logger.Debug("restart failed", "service", name, "error", err)
			continue
		}
		return name, nil
	}
	return "", ErrNoService
}

func (r *Restarter) systemctl(ctx context.Context, action, service string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, systemctlCommand, "--user", action, service).Output()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("profile: systemctl --user %s %s: %w", action, service, err)
	}
	return strings.TrimSpace(string(out)), nil
}
