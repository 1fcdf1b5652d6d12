// bandwidth runs a speed test every interval, redraws the throughput graph
// and prints the latest reading. Failed tests reuse the last good reading so
// the graph stays continuous.
//
// Usage:
//
//	bandwidth [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/deck-scripts/config.toml)
//	-once           Run a single cycle and exit
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
	"path/filepath"
	"time"

	"gitlab.com/tinyland/lab/deck-scripts/cache"
	"gitlab.com/tinyland/lab/deck-scripts/collectors/bandwidth"
	"gitlab.com/tinyland/lab/deck-scripts/config"
	"gitlab.com/tinyland/lab/deck-scripts/internal/cli"
	"gitlab.com/tinyland/lab/deck-scripts/render"
)

func main() {
	flags := cli.RegisterFlags(flag.CommandLine)
	once := flag.Bool("once", false, "Run a single cycle and exit")
	flag.Parse()

	if flags.ShowVersion {
		fmt.Println(cli.Version("bandwidth"))
		return
	}

	cfg, err := cli.LoadConfig(flags.ConfigPath)
	if err != nil {
		cli.Fatal("bandwidth: %v", err)
	}
	logger := cli.NewLogger(os.Stderr, cfg.General.LogLevel, flags.Verbose)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	if err := checkInstalled(ctx, cfg, logger, os.Stdout); err != nil {
		cancel()
		os.Exit(1)
	}

	store, err := cache.NewStore(cfg.General.CacheDir, logger)
	if err != nil {
		// Runs without persistence; store is nil.
		logger.Warn("bandwidth cache unavailable", "error", err)
	}

	collector := bandwidth.NewBandwidthCollector(bandwidth.Options{
		Binary:        cfg.Bandwidth.Binary,
		Interval:      cfg.Bandwidth.Interval.Duration,
		Timeout:       cfg.Bandwidth.Timeout.Duration,
		HistoryPoints: cfg.Bandwidth.HistoryPoints,
	}, store, logger)

	if err := loop(ctx, collector, cfg, logger, os.Stdout, *once); err != nil && !errors.Is(err, context.Canceled) {
		cancel()
		cli.Fatal("bandwidth: %v", err)
	}
}

// checkInstalled verifies the speedtest binary runs, bounded by the
// bandwidth timeout. On failure it prints install guidance to out.
func checkInstalled(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Bandwidth.Timeout.Duration)
	defer cancel()

	if err := bandwidth.CheckInstalled(ctx, cfg.Bandwidth.Binary); err != nil {
		logger.Debug("dependency check failed", "error", err)
		fmt.Fprintf(out, "Error: '%s' is not installed or not in your PATH.\n", cfg.Bandwidth.Binary)
		fmt.Fprintln(out, "Please install it, e.g., 'pip install speedtest-cli'")
		return err
	}
	return nil
}

// loop runs cycles until ctx is cancelled, or once when single is set.
func loop(ctx context.Context, collector *bandwidth.BandwidthCollector, cfg *config.Config, logger *slog.Logger, out io.Writer, single bool) error {
	r := render.NewRenderer(nil, logger)
	chartPath := filepath.Join(cfg.ResolveOutputDir(), cfg.Bandwidth.OutputImage)

	for {
		if err := cycle(ctx, collector, r, cfg, chartPath, logger, out); err != nil {
			return err
		}
		if single {
			return nil
		}

		logger.Debug("sleeping", "next", collector.Interval())
		t := time.NewTimer(collector.Interval())
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// cycle samples once, redraws the graph and prints the caption. A chart
// failure is logged and does not stop the loop.
func cycle(ctx context.Context, collector *bandwidth.BandwidthCollector, r *render.Renderer, cfg *config.Config, chartPath string, logger *slog.Logger, out io.Writer) error {
	result, err := collector.Collect(ctx)
	if err != nil {
		return err
	}
	sample := result.Data.(*bandwidth.Sample)

	series := render.Series{
		Times:    sample.History.Timestamps,
		Download: sample.History.Download,
		Upload:   sample.History.Upload,
	}
	if err := r.WriteBandwidthChart(series, cfg.Bandwidth.Width, cfg.Bandwidth.Height, chartPath); err != nil {
		logger.Error("failed to draw bandwidth graph", "path", chartPath, "error", err)
	}

	fmt.Fprintln(out, sample.Reading.Caption())
	return nil
}
