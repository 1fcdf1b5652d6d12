// Package sysmetrics samples CPU load, RAM usage and disk throughput from
// procfs for the system-monitor badges.
package sysmetrics

import "fmt"

// Metric is a sampled value that remembers whether it was actually read.
// A failed read leaves Value at zero with Available false, so callers that
// only print the number keep working while logs can tell "no data" apart
// from a genuine zero.
type Metric struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
	Warning   string  `json:"warning,omitempty"`
}

// ok returns an available metric.
func ok(v float64) Metric {
	return Metric{Value: v, Available: true}
}

// unavailable returns a zero metric carrying the failure reason.
func unavailable(err error) Metric {
	return Metric{Warning: err.Error()}
}

// SysMetricsData holds one sample of the three system gauges.
type SysMetricsData struct {
	// CPULoad is the 1-minute load average per logical processor, in percent.
	CPULoad Metric `json:"cpu_load"`

	// RAMUsed is MemTotal minus MemAvailable, in GiB.
	RAMUsed Metric `json:"ram_used"`

	// RAMTotal is MemTotal in GiB. Zero when RAMUsed is unavailable.
	RAMTotal float64 `json:"ram_total"`

	// DiskIO is the combined read+write throughput of whole disks, in MB/s.
	DiskIO Metric `json:"disk_io"`
}

// RAMPercent returns used RAM as a percentage of total, or 0 when the total
// is unknown.
func (d *SysMetricsData) RAMPercent() float64 {
	if d.RAMTotal <= 0 {
		return 0
	}
	return d.RAMUsed.Value / d.RAMTotal * 100
}

// Summary renders the one-line status text shown under the StreamDeck key.
func (d *SysMetricsData) Summary() string {
	return fmt.Sprintf("CPU:%.0f%% RAM:%.1fG IO:%.0fMB/s", d.CPULoad.Value, d.RAMUsed.Value, d.DiskIO.Value)
}

// Warnings collects the failure reasons of every unavailable metric.
func (d *SysMetricsData) Warnings() []string {
	var out []string
	for _, m := range []Metric{d.CPULoad, d.RAMUsed, d.DiskIO} {
		if !m.Available && m.Warning != "" {
			out = append(out, m.Warning)
		}
	}
	return out
}
