// cider-track renders the current track of a media player as a 256x256
// key image.
//
// Usage:
//
//	cider-track [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/deck-scripts/config.toml)
//	-player string  Player name override
//	-verbose        Enable verbose logging
//	-version        Print version and exit
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gitlab.com/tinyland/lab/deck-scripts/collectors/nowplaying"
	"gitlab.com/tinyland/lab/deck-scripts/config"
	"gitlab.com/tinyland/lab/deck-scripts/internal/cli"
	"gitlab.com/tinyland/lab/deck-scripts/render"
)

func main() {
	flags := cli.RegisterFlags(flag.CommandLine)
	player := flag.String("player", "", "Player name override")
	flag.Parse()

	if flags.ShowVersion {
		fmt.Println(cli.Version("cider-track"))
		return
	}

	cfg, err := cli.LoadConfig(flags.ConfigPath)
	if err != nil {
		cli.Fatal("cider-track: %v", err)
	}
	if *player != "" {
		cfg.Track.Player = *player
	}
	logger := cli.NewLogger(os.Stderr, cfg.General.LogLevel, flags.Verbose)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		cancel()
		cli.Fatal("cider-track: %v", err)
	}
}

// run queries the player and writes the card. A save failure is printed
// and is not fatal.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	collector := nowplaying.NewNowPlayingCollector(nowplaying.Options{
		Binary:  cfg.Track.Binary,
		Player:  cfg.Track.Player,
		Timeout: cfg.Track.Timeout.Duration,
	}, logger)

	result, err := collector.Collect(ctx)
	if err != nil {
		return err
	}
	track := result.Data.(nowplaying.Track).Normalize()

	path := filepath.Join(cfg.ResolveOutputDir(), cfg.Track.OutputImage)
	if err := render.NewRenderer(nil, logger).WriteTrack(track.Artist, track.Title, path); err != nil {
		fmt.Fprintf(out, "Error saving image: %v\n", err)
	}
	return nil
}
