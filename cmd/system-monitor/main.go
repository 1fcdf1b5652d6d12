// system-monitor samples CPU load, RAM usage and disk throughput, writes a
// color-coded badge image for each, and prints a one-line summary.
//
// Usage:
//
//	system-monitor [flags]
//
// Flags:
//
//	-config string  Path to configuration file (default: ~/.config/deck-scripts/config.toml)
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

	"gitlab.com/tinyland/lab/deck-scripts/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/deck-scripts/config"
	"gitlab.com/tinyland/lab/deck-scripts/internal/cli"
	"gitlab.com/tinyland/lab/deck-scripts/render"
)

func main() {
	flags := cli.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if flags.ShowVersion {
		fmt.Println(cli.Version("system-monitor"))
		return
	}

	cfg, err := cli.LoadConfig(flags.ConfigPath)
	if err != nil {
		cli.Fatal("system-monitor: %v", err)
	}
	logger := cli.NewLogger(os.Stderr, cfg.General.LogLevel, flags.Verbose)

	ctx, cancel := cli.SignalContext()
	defer cancel()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		cancel()
		cli.Fatal("system-monitor: %v", err)
	}
}

// run takes one sample, writes the three badges and prints the summary.
// Badge write failures are logged; the summary is printed regardless.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	collector := sysmetrics.NewSysMetricsCollector(cfg.System.ProcDir, cfg.System.SampleWindow.Duration, logger)
	result, err := collector.Collect(ctx)
	if err != nil {
		return err
	}
	data := result.Data.(*sysmetrics.SysMetricsData)

	r := render.NewRenderer(nil, logger)
	iconDir := cfg.ResolveIconDir()

	badges := []struct {
		file  string
		badge render.Badge
	}{
		{"cpu.png", render.Badge{
			Value: data.CPULoad.Value,
			Unit:  "%",
			Tier:  render.SelectTier(data.CPULoad.Value, thresholds(cfg.System.CPU)),
		}},
		// RAM shows GiB used but is tiered on percent used.
		{"ram.png", render.Badge{
			Value: data.RAMUsed.Value,
			Unit:  "GiB",
			Tier:  render.SelectTier(data.RAMPercent(), thresholds(cfg.System.RAM)),
		}},
		{"io.png", render.Badge{
			Value: data.DiskIO.Value,
			Unit:  "MB/s",
			Tier:  render.SelectTier(data.DiskIO.Value, thresholds(cfg.System.Disk)),
		}},
	}

	for _, b := range badges {
		path := filepath.Join(iconDir, b.file)
		if err := r.WriteBadge(b.badge, path); err != nil {
			logger.Error("failed to write badge", "path", path, "error", err)
		}
	}

	fmt.Fprintln(out, data.Summary())
	return nil
}

func thresholds(t config.Thresholds) *render.Thresholds {
	return &render.Thresholds{Low: t.Low, High: t.High}
}
