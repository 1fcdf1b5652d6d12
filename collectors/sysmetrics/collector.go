package sysmetrics

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c9s/goprocinfo/linux"
	"github.com/dustin/go-humanize"

	"gitlab.com/tinyland/lab/deck-scripts/collectors"
)

const (
	// collectorName is the unique identifier for this collector.
	collectorName = "sysmetrics"

	// collectorDescription describes what this collector gathers.
	collectorDescription = "Local system metrics (CPU load, RAM used, disk I/O)"

	// defaultInterval is the recommended polling interval. The StreamDeck
	// service re-runs system-monitor on its own schedule.
	defaultInterval = 5 * time.Second

	// defaultWindow is the gap between the two diskstats reads.
	defaultWindow = 1 * time.Second

	// sectorSize is the fixed unit of the diskstats sector counters.
	sectorSize = 512

	bytesPerMiB = 1024 * 1024
	kibPerGiB   = 1024 * 1024
)

// ErrNoProcessors is returned when /proc/cpuinfo lists no processors.
var ErrNoProcessors = errors.New("no processors listed")

// requiredMeminfoKeys must be present in /proc/meminfo for a RAM reading.
var requiredMeminfoKeys = []string{"MemTotal", "MemAvailable"}

// SysMetricsCollector implements collectors.Collector for the system-monitor
// badges. It reads from procfs on Linux.
type SysMetricsCollector struct {
	logger *slog.Logger

	loadavgPath   string
	cpuinfoPath   string
	meminfoPath   string
	diskstatsPath string

	// window is the disk throughput sampling window.
	window time.Duration

	// sleep waits out the sampling window. Overridable for testing.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewSysMetricsCollector creates a SysMetricsCollector reading pseudo-files
// under procDir (normally "/proc"). A non-positive window means one second.
// If logger is nil, a no-op logger is used.
func NewSysMetricsCollector(procDir string, window time.Duration, logger *slog.Logger) *SysMetricsCollector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if procDir == "" {
		procDir = "/proc"
	}
	if window <= 0 {
		window = defaultWindow
	}

	return &SysMetricsCollector{
		logger:        logger,
		loadavgPath:   filepath.Join(procDir, "loadavg"),
		cpuinfoPath:   filepath.Join(procDir, "cpuinfo"),
		meminfoPath:   filepath.Join(procDir, "meminfo"),
		diskstatsPath: filepath.Join(procDir, "diskstats"),
		window:        window,
		sleep:         sleepContext,
	}
}

// Name returns the collector's unique identifier.
func (c *SysMetricsCollector) Name() string {
	return collectorName
}

// Description returns a human-readable description of what this collector gathers.
func (c *SysMetricsCollector) Description() string {
	return collectorDescription
}

// Interval returns the recommended polling interval for this collector.
func (c *SysMetricsCollector) Interval() time.Duration {
	return defaultInterval
}

// Collect samples CPU load, RAM usage and disk I/O. Each failed read is
// replaced by an unavailable zero metric and reported as a warning. Collect
// blocks for the disk sampling window.
func (c *SysMetricsCollector) Collect(ctx context.Context) (*collectors.CollectResult, error) {
	if err := collectors.CheckContext(ctx); err != nil {
		return nil, err
	}

	data := &SysMetricsData{}

	if load, err := c.readCPULoad(); err != nil {
		data.CPULoad = unavailable(err)
	} else {
		data.CPULoad = ok(load)
	}

	if used, total, err := c.readRAM(); err != nil {
		data.RAMUsed = unavailable(err)
	} else {
		data.RAMUsed = ok(used)
		data.RAMTotal = total
	}

	rate, err := c.readDiskIO(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		data.DiskIO = unavailable(err)
	} else {
		data.DiskIO = ok(rate)
	}

	warnings := data.Warnings()
	for _, w := range warnings {
		c.logger.Warn("sysmetrics read failed", "error", w)
	}

	c.logger.Debug("sysmetrics collected",
		"cpu", fmt.Sprintf("%.1f%%", data.CPULoad.Value),
		"ram", fmt.Sprintf("%.2f/%.2f GiB", data.RAMUsed.Value, data.RAMTotal),
		"io", fmt.Sprintf("%.2f MB/s", data.DiskIO.Value),
	)

	return &collectors.CollectResult{
		Collector: collectorName,
		Timestamp: time.Now(),
		Data:      data,
		Warnings:  warnings,
	}, nil
}

// readCPULoad returns the 1-minute load average divided by the number of
// logical processors, as a percentage.
func (c *SysMetricsCollector) readCPULoad() (float64, error) {
	load, err := linux.ReadLoadAvg(c.loadavgPath)
	if err != nil {
		return 0, fmt.Errorf("sysmetrics: read %s: %w", c.loadavgPath, err)
	}

	count, err := countProcessors(c.cpuinfoPath)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, fmt.Errorf("sysmetrics: %s: %w", c.cpuinfoPath, ErrNoProcessors)
	}

	return load.Last1Min / float64(count) * 100.0, nil
}

// readRAM returns used and total memory in GiB.
// Used = MemTotal - MemAvailable.
func (c *SysMetricsCollector) readRAM() (used, total float64, err error) {
	// goprocinfo zero-fills absent keys, so presence is checked first.
	present := make(map[string]bool, len(requiredMeminfoKeys))
	err = scanKeyValues(c.meminfoPath, func(key, value string) {
		if value != "" {
			present[key] = true
		}
	})
	if err != nil {
		return 0, 0, err
	}
	for _, key := range requiredMeminfoKeys {
		if !present[key] {
			return 0, 0, fmt.Errorf("sysmetrics: %s not found in %s", key, c.meminfoPath)
		}
	}

	defer recoverMalformed(c.meminfoPath, &err)

	info, err := linux.ReadMemInfo(c.meminfoPath)
	if err != nil {
		return 0, 0, fmt.Errorf("sysmetrics: read %s: %w", c.meminfoPath, err)
	}

	if info.MemTotal == 0 {
		return 0, 0, fmt.Errorf("sysmetrics: MemTotal is zero in %s", c.meminfoPath)
	}
	if info.MemAvailable > info.MemTotal {
		return 0, 0, fmt.Errorf("sysmetrics: MemAvailable %d kB exceeds MemTotal %d kB", info.MemAvailable, info.MemTotal)
	}

	total = float64(info.MemTotal) / kibPerGiB
	available := float64(info.MemAvailable) / kibPerGiB
	return total - available, total, nil
}

// readDiskIO samples the whole-disk byte counters twice, one window apart,
// and returns the throughput in MB/s.
func (c *SysMetricsCollector) readDiskIO(ctx context.Context) (float64, error) {
	start, err := c.readDiskBytes()
	if err != nil {
		return 0, err
	}

	if err := c.sleep(ctx, c.window); err != nil {
		return 0, err
	}

	end, err := c.readDiskBytes()
	if err != nil {
		return 0, err
	}

	if end < start {
		return 0, fmt.Errorf("sysmetrics: disk counters went backwards (%d -> %d)", start, end)
	}

	delta := end - start
	c.logger.Debug("disk sample", "delta", humanize.Bytes(delta), "window", c.window)

	return float64(delta) / bytesPerMiB / c.window.Seconds(), nil
}

// readDiskBytes sums read and write bytes across whole, non-loop disks.
func (c *SysMetricsCollector) readDiskBytes() (total uint64, err error) {
	defer recoverMalformed(c.diskstatsPath, &err)

	stats, err := linux.ReadDiskStats(c.diskstatsPath)
	if err != nil {
		return 0, fmt.Errorf("sysmetrics: read %s: %w", c.diskstatsPath, err)
	}

	for _, s := range stats {
		if !isWholeDisk(s.Name) {
			continue
		}
		total += (s.ReadSectors + s.WriteSectors) * sectorSize
	}
	return total, nil
}

// recoverMalformed turns a goprocinfo parser panic into an error. The
// parsers index fields without bounds checks, so a truncated line panics.
// Deferred by every reader that calls into them.
func recoverMalformed(path string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("sysmetrics: malformed %s: %v", path, r)
	}
}

// countProcessors counts the "processor" entries in a cpuinfo file. Blank
// lines between entries are optional.
func countProcessors(path string) (int, error) {
	n := 0
	err := scanKeyValues(path, func(key, _ string) {
		if key == "processor" {
			n++
		}
	})
	return n, err
}

// scanKeyValues calls fn with the trimmed key and value of every
// "key: value" line in path. Lines without a colon are skipped.
func scanKeyValues(path string, fn func(key, value string)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("sysmetrics: read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		fn(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("sysmetrics: read %s: %w", path, err)
	}
	return nil
}

// isWholeDisk reports whether a diskstats device name should be counted.
// Loop devices are skipped, as is any name ending in a digit (partitions).
func isWholeDisk(name string) bool {
	if name == "" || strings.HasPrefix(name, "loop") {
		return false
	}
	last := name[len(name)-1]
	return last < '0' || last > '9'
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Compile-time interface compliance check.
var _ collectors.Collector = (*SysMetricsCollector)(nil)
