// Package config provides configuration parsing for the deck-scripts programs.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration shared by every deck-scripts binary.
type Config struct {
	// General settings
	General GeneralConfig `toml:"general"`

	// Bandwidth sampler
	Bandwidth BandwidthConfig `toml:"bandwidth"`

	// Now-playing renderer
	Track TrackConfig `toml:"track"`

	// Profile generator
	Profile ProfileConfig `toml:"profile"`

	// System-metrics sampler
	System SystemConfig `toml:"system"`
}

// GeneralConfig holds settings shared by all programs.
type GeneralConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// OutputDir is where images are written. Empty means the directory
	// containing the running executable.
	OutputDir string `toml:"output_dir"`

	// CacheDir holds the bandwidth cache files.
	CacheDir string `toml:"cache_dir"`
}

// BandwidthConfig configures the speed-test poller.
type BandwidthConfig struct {
	// Binary is the speed-test CLI (JSON output mode).
	Binary string `toml:"binary"`

	// Interval is the sleep between samples.
	Interval Duration `toml:"interval"`

	// Timeout bounds a single speed-test run.
	Timeout Duration `toml:"timeout"`

	// HistoryPoints caps the number of graph points retained.
	HistoryPoints int `toml:"history_points"`

	// OutputImage is the chart file name, relative to OutputDir.
	OutputImage string `toml:"output_image"`

	// Width and Height are the chart size in pixels.
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// TrackConfig configures the now-playing renderer.
type TrackConfig struct {
	// Binary is the media-player control CLI.
	Binary string `toml:"binary"`

	// Player is the MPRIS player name passed to --player.
	Player string `toml:"player"`

	// Timeout bounds each CLI call.
	Timeout Duration `toml:"timeout"`

	// OutputImage is the image file name, relative to OutputDir.
	OutputImage string `toml:"output_image"`
}

// ProfileConfig configures the streamdeck-ui profile generator.
type ProfileConfig struct {
	// INIPath is the streamdeck-ui configuration file.
	INIPath string `toml:"ini_path"`

	// ProfilePath is where the generated JSON profile is written.
	ProfilePath string `toml:"profile_path"`

	// Services are the user units tried, in order, for the restart.
	Services []string `toml:"services"`

	// RestartTimeout bounds each systemctl call.
	RestartTimeout Duration `toml:"restart_timeout"`
}

// SystemConfig configures the system-metrics sampler.
type SystemConfig struct {
	// IconDir is where the badge images are written. Empty means
	// OutputDir/icons.
	IconDir string `toml:"icon_dir"`

	// ProcDir is the procfs mount point.
	ProcDir string `toml:"proc_dir"`

	// SampleWindow is the gap between the two disk statistics reads.
	SampleWindow Duration `toml:"sample_window"`

	// Thresholds select the badge color tier per metric.
	CPU  Thresholds `toml:"cpu"`
	RAM  Thresholds `toml:"ram"`
	Disk Thresholds `toml:"disk"`
}

// Thresholds are the low/high color tier boundaries for a badge.
type Thresholds struct {
	Low  float64 `toml:"low"`
	High float64 `toml:"high"`
}

// Duration wraps time.Duration for TOML string decoding ("30s", "1m").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string. Empty input yields zero.
func (d *Duration) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", string(text))
	}
	d.Duration = parsed
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Validate checks the configuration for logical consistency.
func (c *Config) Validate() error {
	switch c.General.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("general.log_level must be debug, info, warn or error, got %q", c.General.LogLevel)
	}
	if c.General.CacheDir == "" {
		return fmt.Errorf("general.cache_dir is required")
	}

	if c.Bandwidth.Binary == "" {
		return fmt.Errorf("bandwidth.binary is required")
	}
	if c.Bandwidth.Interval.Duration <= 0 {
		return fmt.Errorf("bandwidth.interval must be positive")
	}
	if c.Bandwidth.Timeout.Duration <= 0 {
		return fmt.Errorf("bandwidth.timeout must be positive")
	}
	if c.Bandwidth.HistoryPoints < 1 {
		return fmt.Errorf("bandwidth.history_points must be at least 1, got %d", c.Bandwidth.HistoryPoints)
	}
	if c.Bandwidth.Width < 100 || c.Bandwidth.Height < 50 {
		return fmt.Errorf("bandwidth chart must be at least 100x50, got %dx%d", c.Bandwidth.Width, c.Bandwidth.Height)
	}

	if c.Track.Binary == "" || c.Track.Player == "" {
		return fmt.Errorf("track.binary and track.player are required")
	}
	if c.Track.Timeout.Duration <= 0 {
		return fmt.Errorf("track.timeout must be positive")
	}

	if c.Profile.ProfilePath == "" {
		return fmt.Errorf("profile.profile_path is required")
	}
	if c.Profile.RestartTimeout.Duration <= 0 {
		return fmt.Errorf("profile.restart_timeout must be positive")
	}

	if c.System.ProcDir == "" {
		return fmt.Errorf("system.proc_dir is required")
	}
	for name, th := range map[string]Thresholds{"cpu": c.System.CPU, "ram": c.System.RAM, "disk": c.System.Disk} {
		if th.Low > th.High {
			return fmt.Errorf("system.%s: low threshold %.1f exceeds high %.1f", name, th.Low, th.High)
		}
	}

	return nil
}
