// generate-profile writes a streamdeck-ui profile whose keys launch the
// deck-scripts programs, then restarts the streamdeck-ui user service.
//
// Usage:
//
//	generate-profile [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/deck-scripts/config.toml)
//	-no-restart     Write the profile without restarting the service
//	-verbose        Enable verbose logging
//	-version        Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/deck-scripts/config"
	"gitlab.com/tinyland/lab/deck-scripts/display/color"
	"gitlab.com/tinyland/lab/deck-scripts/internal/cli"
	"gitlab.com/tinyland/lab/deck-scripts/profile"
)

func main() {
	flags := cli.RegisterFlags(flag.CommandLine)
	noRestart := flag.Bool("no-restart", false, "Write the profile without restarting the service")
	flag.Parse()

	if flags.ShowVersion {
		fmt.Println(cli.Version("generate-profile"))
		return
	}

	cfg, err := cli.LoadConfig(flags.ConfigPath)
	if err != nil {
		cli.Fatal("generate-profile: %v", err)
	}
	logger := cli.NewLogger(os.Stderr, cfg.General.LogLevel, flags.Verbose)
	color.Apply(os.Stdout)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	if err := run(ctx, cfg, logger, os.Stdout, !*noRestart); err != nil {
		cancel()
		cli.Fatal("generate-profile: %v", err)
	}
}

// run writes the profile and optionally restarts the UI. A failed restart
// prints guidance and is not an error.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer, restart bool) error {
	settings := profile.LoadSettings(cfg.Profile.INIPath, logger)

	scriptsDir := settings.ScriptsDir
	if scriptsDir == "" {
		scriptsDir = cfg.ResolveOutputDir()
	}

	p := profile.Build(scriptsDir, settings.PageName)
	n, err := profile.Write(p, cfg.Profile.ProfilePath)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, color.Success(fmt.Sprintf("Profile written to %s (%s)", cfg.Profile.ProfilePath, humanize.Bytes(uint64(n)))))
	logger.Debug("profile generated", "scripts_dir", scriptsDir, "page", settings.PageName, "buttons", profile.ButtonCount)

	if !restart {
		return nil
	}

	restarter := profile.NewRestarter(cfg.Profile.RestartTimeout.Duration, logger)
	service, err := restarter.Restart(ctx, cfg.Profile.Services)
	switch {
	case errors.Is(err, profile.ErrNoService):
		fmt.Fprintln(out, color.Warn(profile.Guidance[0]))
		for _, line := range profile.Guidance[1:] {
			fmt.Fprintln(out, color.Hint(line))
		}
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(out, color.Success(fmt.Sprintf("Restarted %s service", service)))
	return nil
}
