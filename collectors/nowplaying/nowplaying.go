// Package nowplaying asks playerctl what a media player is playing and
// normalizes the answer into an artist/title pair that is always printable.
package nowplaying

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"gitlab.com/tinyland/lab/deck-scripts/collectors"
)

const (
	collectorName        = "nowplaying"
	collectorDescription = "Current track artist and title via playerctl"

	defaultBinary   = "playerctl"
	defaultPlayer   = "cider"
	defaultTimeout  = 5 * time.Second
	defaultInterval = 5 * time.Second

	// metadataFormat asks for artist and title on separate lines.
	metadataFormat = "{{artist}}\n{{title}}"
)

// Fallback texts.
const (
	PlaceholderArtist = "Cider"
	TitleNoMetadata   = "..."
	TitleNotPlaying   = "Not Playing"
	TitleNotAvailable = "Not Available"
)

// ErrNoOutput is returned when playerctl succeeds but prints nothing.
var ErrNoOutput = errors.New("playerctl returned no metadata")

// Track is what the key shows. Both fields are non-empty after Normalize.
type Track struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// Normalize substitutes the placeholders for empty fields.
func (t Track) Normalize() Track {
	t.Artist = strings.TrimSpace(t.Artist)
	t.Title = strings.TrimSpace(t.Title)
	if t.Artist == "" {
		t.Artist = PlaceholderArtist
	}
	if t.Title == "" {
		t.Title = TitleNotAvailable
	}
	return t
}

// String renders "artist - title" for logs.
func (t Track) String() string {
	return t.Artist + " - " + t.Title
}

// Options configures a NowPlayingCollector. Zero values take defaults.
type Options struct {
	Binary  string
	Player  string
	Timeout time.Duration
}

// NowPlayingCollector implements collectors.Collector for the track key.
type NowPlayingCollector struct {
	opts   Options
	logger *slog.Logger
}

// NewNowPlayingCollector creates a collector. If logger is nil, a no-op
// logger is used.
func NewNowPlayingCollector(opts Options, logger *slog.Logger) *NowPlayingCollector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.Player == "" {
		opts.Player = defaultPlayer
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &NowPlayingCollector{opts: opts, logger: logger}
}

// Name returns the collector's unique identifier.
func (c *NowPlayingCollector) Name() string {
	return collectorName
}

// Description returns a human-readable description of what this collector gathers.
func (c *NowPlayingCollector) Description() string {
	return collectorDescription
}

// Interval returns the recommended polling interval for this collector.
func (c *NowPlayingCollector) Interval() time.Duration {
	return defaultInterval
}

// Collect returns the current Track. playerctl failures never produce an
// error: they map to the placeholder titles and a warning.
func (c *NowPlayingCollector) Collect(ctx context.Context) (*collectors.CollectResult, error) {
	if err := collectors.CheckContext(ctx); err != nil {
		return nil, err
	}

	track, err := c.Current(ctx)
	var warnings []string
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		warnings = append(warnings, err.Error())
		c.logger.Warn("playerctl query failed", "player", c.opts.Player, "error", err)
	}

	c.logger.Debug("track collected", "track", track.String())

	return &collectors.CollectResult{
		Collector: collectorName,
		Timestamp: time.Now(),
		Data:      track,
		Warnings:  warnings,
	}, nil
}

// Current queries the player. The returned Track is always usable; err is
// set only when playerctl could not be run, in which case the title is
// TitleNotAvailable.
func (c *NowPlayingCollector) Current(ctx context.Context) (Track, error) {
	out, err := c.playerctl(ctx, "metadata", "--format", metadataFormat)
	if err != nil {
		return Track{Artist: PlaceholderArtist, Title: TitleNotAvailable}, err
	}

	track, err := parseMetadata(out)
	if errors.Is(err, ErrNoOutput) {
		return c.statusFallback(ctx)
	}
	return track.Normalize(), nil
}

// statusFallback handles a player that is open with no metadata.
func (c *NowPlayingCollector) statusFallback(ctx context.Context) (Track, error) {
	status, err := c.playerctl(ctx, "status")
	if err != nil {
		return Track{Artist: PlaceholderArtist, Title: TitleNotAvailable}, err
	}

	switch strings.TrimSpace(status) {
	case "Playing", "Paused":
		return Track{Artist: PlaceholderArtist, Title: TitleNoMetadata}, nil
	default:
		return Track{Artist: PlaceholderArtist, Title: TitleNotPlaying}, nil
	}
}

// playerctl runs one playerctl subcommand for the configured player with
// stderr discarded.
func (c *NowPlayingCollector) playerctl(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	full := append([]string{"--player", c.opts.Player}, args...)
	cmd := exec.CommandContext(ctx, c.opts.Binary, full...)
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("nowplaying: %s %s: %w", c.opts.Binary, args[0], ctx.Err())
		}
		return "", fmt.Errorf("nowplaying: %s %s: %w", c.opts.Binary, args[0], err)
	}
	return string(out), nil
}

// parseMetadata splits "artist\ntitle" output on the first newline and trims
// each half, so an empty artist line is kept. Output without a newline is
// all artist. Returns ErrNoOutput for blank output.
func parseMetadata(out string) (Track, error) {
	if strings.TrimSpace(out) == "" {
		return Track{}, ErrNoOutput
	}

	artist, title, _ := strings.Cut(out, "\n")
	return Track{
		Artist: strings.TrimSpace(artist),
		Title:  strings.TrimSpace(title),
	}, nil
}

// Compile-time interface compliance check.
var _ collectors.Collector = (*NowPlayingCollector)(nil)
