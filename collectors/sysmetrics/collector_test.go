package sysmetrics

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

const testMeminfo = `MemTotal:       16384000 kB
MemFree:         2048000 kB
MemAvailable:    8192000 kB
Buffers:          512000 kB
Cached:          3072000 kB
`

const testLoadavg = "2.00 1.50 1.00 2/345 6789\n"

// cpuinfoWith returns a /proc/cpuinfo body listing n processors, each block
// terminated by a blank line as the kernel writes it.
func cpuinfoWith(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("processor\t: ")
		b.WriteString(string(rune('0' + i)))
		b.WriteString("\nvendor_id\t: GenuineIntel\nmodel name\t: Test CPU @ 3.00GHz\n\n")
	}
	return b.String()
}

// diskstatsLine formats one 14-field /proc/diskstats row.
func diskstatsLine(major, minor int, name string, readSectors, writeSectors int) string {
	return strings.Join([]string{
		strconv.Itoa(major), strconv.Itoa(minor), name,
		"100", "0", strconv.Itoa(readSectors), "50",
		"200", "0", strconv.Itoa(writeSectors), "80",
		"0", "130", "130",
	}, " ") + "\n"
}

// writeProc writes fixture pseudo-files into a temp procfs directory.
func writeProc(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReadCPULoad(t *testing.T) {
	tests := []struct {
		name    string
		loadavg string
		cpus    int
		want    float64
	}{
		{"two load on four cpus", "2.00 1.50 1.00 2/345 6789\n", 4, 50.0},
		{"idle", "0.00 0.00 0.00 1/100 42\n", 8, 0.0},
		{"overloaded single cpu", "3.50 2.00 1.00 5/200 999\n", 1, 350.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProc(t, map[string]string{
				"loadavg": tt.loadavg,
				"cpuinfo": cpuinfoWith(tt.cpus),
			})
			c := NewSysMetricsCollector(dir, time.Second, nil)

			got, err := c.readCPULoad()
			if err != nil {
				t.Fatalf("readCPULoad() error = %v", err)
			}
			if !approxEqual(got, tt.want) {
				t.Errorf("readCPULoad() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestReadCPULoad_Failures(t *testing.T) {
	t.Run("missing loadavg", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"cpuinfo": cpuinfoWith(2)})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		if _, err := c.readCPULoad(); err == nil {
			t.Error("expected error for missing loadavg")
		}
	})

	t.Run("garbled loadavg", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"loadavg": "nonsense\n", "cpuinfo": cpuinfoWith(2)})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		if _, err := c.readCPULoad(); err == nil {
			t.Error("expected error for garbled loadavg")
		}
	})

	t.Run("no processors", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"loadavg": testLoadavg, "cpuinfo": ""})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		_, err := c.readCPULoad()
		if !errors.Is(err, ErrNoProcessors) {
			t.Errorf("readCPULoad() error = %v, want ErrNoProcessors", err)
		}
	})
}

func TestReadCPULoad_ProcessorCounting(t *testing.T) {
	tests := []struct {
		name    string
		cpuinfo string
		want    float64
	}{
		{
			name:    "flat listing without blank lines",
			cpuinfo: "processor\t: 0\nprocessor\t: 1\nprocessor\t: 2\nprocessor\t: 3\n",
			want:    50.0,
		},
		{
			name:    "trailing hardware block",
			cpuinfo: cpuinfoWith(4) + "Hardware\t: BCM2835\nRevision\t: c03111\nSerial\t\t: 100000001\n\n",
			want:    50.0,
		},
		{
			name:    "line without colon",
			cpuinfo: "processor\t: 0\ngarbage line\n\n",
			want:    200.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeProc(t, map[string]string{"loadavg": testLoadavg, "cpuinfo": tt.cpuinfo})
			c := NewSysMetricsCollector(dir, time.Second, nil)

			got, err := c.readCPULoad()
			if err != nil {
				t.Fatalf("readCPULoad() error = %v", err)
			}
			if !approxEqual(got, tt.want) {
				t.Errorf("readCPULoad() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestReadRAM(t *testing.T) {
	dir := writeProc(t, map[string]string{"meminfo": testMeminfo})
	c := NewSysMetricsCollector(dir, time.Second, nil)

	used, total, err := c.readRAM()
	if err != nil {
		t.Fatalf("readRAM() error = %v", err)
	}

	// 16384000 kB = 15.625 GiB, 8192000 kB = 7.8125 GiB available.
	if !approxEqual(total, 15.625) {
		t.Errorf("total = %f, want 15.625", total)
	}
	if !approxEqual(used, 7.8125) {
		t.Errorf("used = %f, want 7.8125", used)
	}
}

func TestReadRAMEdgeCases(t *testing.T) {
	t.Run("missing MemTotal", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"meminfo": "MemAvailable:    4000000 kB\n"})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		if _, _, err := c.readRAM(); err == nil {
			t.Error("expected error for missing MemTotal")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		c := NewSysMetricsCollector(t.TempDir(), time.Second, nil)
		used, total, err := c.readRAM()
		if err == nil {
			t.Error("expected error for missing meminfo")
		}
		if used != 0 || total != 0 {
			t.Errorf("readRAM() = (%f, %f), want (0, 0)", used, total)
		}
	})

	t.Run("missing MemAvailable", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"meminfo": "MemTotal:       16384000 kB\nMemFree:         2048000 kB\n"})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		used, total, err := c.readRAM()
		if err == nil {
			t.Error("expected error for missing MemAvailable")
		}
		if used != 0 || total != 0 {
			t.Errorf("readRAM() = (%f, %f), want (0, 0)", used, total)
		}
	})

	t.Run("empty MemAvailable value", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"meminfo": "MemTotal: 16384000 kB\nMemAvailable:\n"})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		if _, _, err := c.readRAM(); err == nil {
			t.Error("expected error for empty MemAvailable")
		}
	})

	t.Run("empty value on another key", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"meminfo": testMeminfo + "Dirty:\n"})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		used, total, err := c.readRAM()
		if err == nil || !strings.Contains(err.Error(), "malformed") {
			t.Errorf("readRAM() error = %v, want malformed error", err)
		}
		if used != 0 || total != 0 {
			t.Errorf("readRAM() = (%f, %f), want (0, 0)", used, total)
		}
	})

	t.Run("available exceeds total", func(t *testing.T) {
		dir := writeProc(t, map[string]string{"meminfo": "MemTotal: 1000 kB\nMemAvailable: 2000 kB\n"})
		c := NewSysMetricsCollector(dir, time.Second, nil)
		if _, _, err := c.readRAM(); err == nil {
			t.Error("expected error when MemAvailable > MemTotal")
		}
	})
}

func TestIsWholeDisk(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"sda", true},
		{"vdb", true},
		{"vda", true},
		{"sda1", false},
		{"loop0", false},
		{"loopback", false},
		{"nvme0n1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isWholeDisk(tt.name); got != tt.want {
			t.Errorf("isWholeDisk(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReadDiskBytes(t *testing.T) {
	dir := writeProc(t, map[string]string{
		"diskstats": diskstatsLine(7, 0, "loop0", 9000, 9000) +
			diskstatsLine(8, 0, "sda", 2048, 4096) +
			diskstatsLine(8, 1, "sda1", 1000, 1000) +
			diskstatsLine(8, 16, "sdb", 10, 6),
	})
	c := NewSysMetricsCollector(dir, time.Second, nil)

	got, err := c.readDiskBytes()
	if err != nil {
		t.Fatalf("readDiskBytes() error = %v", err)
	}
	// (2048+4096+10+6) sectors * 512 bytes.
	want := uint64(6160 * 512)
	if got != want {
		t.Errorf("readDiskBytes() = %d, want %d", got, want)
	}
}

func TestReadDiskIO(t *testing.T) {
	dir := writeProc(t, map[string]string{
		"diskstats": diskstatsLine(8, 0, "sda", 2048, 4096) + diskstatsLine(8, 1, "sda1", 0, 0),
	})
	c := NewSysMetricsCollector(dir, time.Second, nil)

	var slept time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = d
		// Second sample: +4096 sectors (2 MiB) on sda, partition noise ignored.
		second := diskstatsLine(8, 0, "sda", 4096, 6144) + diskstatsLine(8, 1, "sda1", 500000, 500000)
		return os.WriteFile(filepath.Join(dir, "diskstats"), []byte(second), 0o644)
	}

	got, err := c.readDiskIO(context.Background())
	if err != nil {
		t.Fatalf("readDiskIO() error = %v", err)
	}
	if slept != time.Second {
		t.Errorf("sampling window = %v, want 1s", slept)
	}
	if !approxEqual(got, 2.0) {
		t.Errorf("readDiskIO() = %f, want 2.0 MB/s", got)
	}
}

func TestReadDiskIO_CountersReset(t *testing.T) {
	dir := writeProc(t, map[string]string{"diskstats": diskstatsLine(8, 0, "sda", 5000, 5000)})
	c := NewSysMetricsCollector(dir, time.Second, nil)
	c.sleep = func(ctx context.Context, d time.Duration) error {
		return os.WriteFile(filepath.Join(dir, "diskstats"), []byte(diskstatsLine(8, 0, "sda", 10, 10)), 0o644)
	}

	if _, err := c.readDiskIO(context.Background()); err == nil {
		t.Error("expected error when counters go backwards")
	}
}

func TestCollect(t *testing.T) {
	dir := writeProc(t, map[string]string{
		"loadavg":   testLoadavg,
		"cpuinfo":   cpuinfoWith(4),
		"meminfo":   testMeminfo,
		"diskstats": diskstatsLine(8, 0, "sda", 0, 0),
	})
	c := NewSysMetricsCollector(dir, time.Second, nil)
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if result.Collector != "sysmetrics" {
		t.Errorf("Collector = %q, want sysmetrics", result.Collector)
	}
	if result.HasWarnings() {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	data, ok := result.Data.(*SysMetricsData)
	if !ok {
		t.Fatalf("Data type = %T, want *SysMetricsData", result.Data)
	}
	if !data.CPULoad.Available || !approxEqual(data.CPULoad.Value, 50.0) {
		t.Errorf("CPULoad = %+v, want available 50.0", data.CPULoad)
	}
	if !data.RAMUsed.Available || !approxEqual(data.RAMUsed.Value, 7.8125) {
		t.Errorf("RAMUsed = %+v, want available 7.8125", data.RAMUsed)
	}
	if !approxEqual(data.RAMPercent(), 50.0) {
		t.Errorf("RAMPercent() = %f, want 50.0", data.RAMPercent())
	}
	// Unchanged counters: a real, available zero.
	if !data.DiskIO.Available || data.DiskIO.Value != 0 {
		t.Errorf("DiskIO = %+v, want available 0", data.DiskIO)
	}
	if got := data.Summary(); got != "CPU:50% RAM:7.8G IO:0MB/s" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestCollect_MalformedMeminfo(t *testing.T) {
	dir := writeProc(t, map[string]string{
		"loadavg":   testLoadavg,
		"cpuinfo":   "processor\t: 0\nprocessor\t: 1\n",
		"meminfo":   "MemTotal: 16384000 kB\nMemAvailable: 8192000 kB\nCached:\n",
		"diskstats": diskstatsLine(8, 0, "sda", 0, 0),
	})
	c := NewSysMetricsCollector(dir, time.Second, nil)
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	data := result.Data.(*SysMetricsData)
	if data.RAMUsed.Available || data.RAMUsed.Value != 0 {
		t.Errorf("RAMUsed = %+v, want unavailable 0", data.RAMUsed)
	}
	if !approxEqual(data.CPULoad.Value, 100.0) {
		t.Errorf("CPULoad = %+v, want 100.0", data.CPULoad)
	}
	if !result.HasWarnings() {
		t.Error("expected a warning for the malformed meminfo")
	}
	if got := data.Summary(); got != "CPU:100% RAM:0.0G IO:0MB/s" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestCollect_AllUnavailable(t *testing.T) {
	c := NewSysMetricsCollector(t.TempDir(), time.Second, nil)
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v, want nil (failures become warnings)", err)
	}
	if len(result.Warnings) != 3 {
		t.Errorf("len(Warnings) = %d, want 3: %v", len(result.Warnings), result.Warnings)
	}

	data := result.Data.(*SysMetricsData)
	for name, m := range map[string]Metric{"cpu": data.CPULoad, "ram": data.RAMUsed, "io": data.DiskIO} {
		if m.Available {
			t.Errorf("%s should be unavailable", name)
		}
		if m.Value != 0 {
			t.Errorf("%s value = %f, want 0", name, m.Value)
		}
	}
	if got := data.Summary(); got != "CPU:0% RAM:0.0G IO:0MB/s" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestCollect_ContextCancelled(t *testing.T) {
	c := NewSysMetricsCollector(t.TempDir(), time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Collect(ctx); err == nil {
		t.Error("Collect() should return error for cancelled context")
	}
}

func TestCollect_CancelledDuringWindow(t *testing.T) {
	dir := writeProc(t, map[string]string{"diskstats": diskstatsLine(8, 0, "sda", 1, 1)})
	c := NewSysMetricsCollector(dir, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(sctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(sctx, d)
	}

	if _, err := c.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Collect() error = %v, want context.Canceled", err)
	}
}

func TestCollectorMetadata(t *testing.T) {
	c := NewSysMetricsCollector("", 0, nil)
	if c.Name() != "sysmetrics" {
		t.Errorf("Name() = %q", c.Name())
	}
	if c.Description() == "" {
		t.Error("Description() is empty")
	}
	if c.Interval() <= 0 {
		t.Error("Interval() should be positive")
	}
	if c.window != time.Second {
		t.Errorf("default window = %v, want 1s", c.window)
	}
	if c.loadavgPath != "/proc/loadavg" {
		t.Errorf("loadavgPath = %q, want /proc/loadavg", c.loadavgPath)
	}
}
