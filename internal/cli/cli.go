// Package cli holds the start-up plumbing shared by the deck-scripts
// binaries: common flags, version info, config loading, logging and signal
// handling.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gitlab.com/tinyland/lab/deck-scripts/config"
)

// Build-time variables, set via ldflags:
//
//	go build -ldflags "-X gitlab.com/tinyland/lab/deck-scripts/internal/cli.version=0.1.0 -X gitlab.com/tinyland/lab/deck-scripts/internal/cli.commit=$(git rev-parse --short HEAD) -X gitlab.com/tinyland/lab/deck-scripts/internal/cli.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Version returns "<name> <version> (<commit>) built <date>".
func Version(name string) string {
	return fmt.Sprintf("%s %s (%s) built %s", name, version, commit, date)
}

// Flags are the options every binary accepts.
type Flags struct {
	ConfigPath  string
	Verbose     bool
	ShowVersion bool
}

// RegisterFlags adds -config, -verbose and -version to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.ConfigPath, "config", "", "Path to configuration file (default: ~/.config/deck-scripts/config.toml)")
	fs.BoolVar(&f.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&f.ShowVersion, "version", false, "Print version and exit")
	return f
}

// LoadConfig loads and validates the configuration. An empty path uses the
// standard search order.
func LoadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("config: load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ParseLevel maps a config log level onto slog. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger returns a text logger on w. verbose forces debug.
func NewLogger(w io.Writer, level string, verbose bool) *slog.Logger {
	lvl := ParseLevel(level)
	if verbose {
		lvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// Fatal prints a message to stderr and exits with status 1.
func Fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
