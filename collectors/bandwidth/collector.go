package bandwidth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/deck-scripts/cache"
	"gitlab.com/tinyland/lab/deck-scripts/collectors"
	"gitlab.com/tinyland/lab/deck-scripts/internal/format"
)

const (
	collectorName        = "bandwidth"
	collectorDescription = "Internet download/upload throughput via speedtest-cli"

	// ReadingKey is the cache key of the last successful reading.
	ReadingKey = "bandwidth"

	// HistoryKey is the cache key of the persisted graph history.
	HistoryKey = "bandwidth_history"

	defaultBinary   = "speedtest-cli"
	defaultInterval = 30 * time.Second
	defaultTimeout  = 60 * time.Second
)

// Options configures a BandwidthCollector. Zero values take defaults.
type Options struct {
	Binary        string
	Interval      time.Duration
	Timeout       time.Duration
	HistoryPoints int
}

// BandwidthCollector runs one speed test per Collect, falls back to the
// last known good reading on failure, and appends a graph point every cycle.
// It is not safe for concurrent use.
type BandwidthCollector struct {
	opts   Options
	store  *cache.Store
	logger *slog.Logger

	last    Reading
	history *History
	loaded  bool

	// run executes one speed test. Overridable for testing.
	run func(ctx context.Context, binary string) (*Reading, error)

	// now returns the point timestamp. Overridable for testing.
	now func() time.Time
}

// NewBandwidthCollector creates a collector. store may be nil, in which case
// nothing is persisted and a failed first test reports zeros.
func NewBandwidthCollector(opts Options, store *cache.Store, logger *slog.Logger) *BandwidthCollector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Binary == "" {
		opts.Binary = defaultBinary
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.HistoryPoints <= 0 {
		opts.HistoryPoints = DefaultHistoryPoints
	}

	return &BandwidthCollector{
		opts:    opts,
		store:   store,
		logger:  logger,
		history: NewHistory(opts.HistoryPoints),
		run:     RunSpeedtest,
		now:     time.Now,
	}
}

// Name returns the collector's unique identifier.
func (c *BandwidthCollector) Name() string {
	return collectorName
}

// Description returns a human-readable description of what this collector gathers.
func (c *BandwidthCollector) Description() string {
	return collectorDescription
}

// Interval returns the configured polling interval.
func (c *BandwidthCollector) Interval() time.Duration {
	return c.opts.Interval
}

// Collect runs one speed test. A failed test is not an error: the sample
// carries the cached reading with Stale set and the failure as a warning.
// Only context cancellation is returned as an error.
func (c *BandwidthCollector) Collect(ctx context.Context) (*collectors.CollectResult, error) {
	if err := collectors.CheckContext(ctx); err != nil {
		return nil, err
	}
	c.restore()

	sample := &Sample{}
	var warnings []string

	runCtx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	reading, err := c.run(runCtx, c.opts.Binary)
	cancel()

	switch {
	case err != nil && ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		age := c.cachedAge()
		c.logger.Warn("speed test failed, using cached reading", "error", err, "cached", age)
		sample.Stale = true
		sample.Error = err.Error()
		warnings = append(warnings, fmt.Sprintf("%v (last good reading: %s)", err, age))
	default:
		c.last = *reading
		c.saveReading()
	}

	sample.Reading = c.last
	c.history.Append(c.now(), c.last.Download, c.last.Upload)
	c.saveHistory()
	sample.History = c.history.Clone()

	c.logger.Debug("bandwidth collected",
		"download", c.last.Download,
		"upload", c.last.Upload,
		"ping", c.last.Ping,
		"stale", sample.Stale,
		"points", c.history.Len(),
	)

	return &collectors.CollectResult{
		Collector: collectorName,
		Timestamp: time.Now(),
		Data:      sample,
		Warnings:  warnings,
	}, nil
}

// restore loads the cached reading and history once per collector.
func (c *BandwidthCollector) restore() {
	if c.loaded {
		return
	}
	c.loaded = true
	if c.store == nil {
		return
	}

	var r Reading
	if found, err := c.store.Load(ReadingKey, &r); err != nil {
		c.logger.Warn("failed to read cached bandwidth", "error", err)
	} else if found {
		c.last = r
	}

	var h History
	found, err := c.store.Load(HistoryKey, &h)
	switch {
	case err != nil:
		c.logger.Warn("failed to read bandwidth history", "error", err)
	case !found:
	case !h.valid():
		c.logger.Warn("discarding bandwidth history with mismatched lengths")
	default:
		h.Limit = c.opts.HistoryPoints
		h.trim()
		c.history = &h
	}
}

// cachedAge describes how old the fallback reading is.
func (c *BandwidthCollector) cachedAge() string {
	if c.store == nil {
		return "never"
	}
	return format.FormatAge(c.store.Age(ReadingKey))
}

func (c *BandwidthCollector) saveReading() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(ReadingKey, c.last); err != nil {
		c.logger.Warn("failed to cache bandwidth reading", "error", err)
	}
}

func (c *BandwidthCollector) saveHistory() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(HistoryKey, c.history); err != nil {
		c.logger.Warn("failed to persist bandwidth history", "error", err)
	}
}

// Compile-time interface compliance check.
var _ collectors.Collector = (*BandwidthCollector)(nil)
