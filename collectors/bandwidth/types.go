// Package bandwidth polls a speed-test CLI and keeps a bounded history of
// download/upload throughput for the bandwidth graph.
package bandwidth

import (
	"fmt"
	"time"
)

// DefaultHistoryPoints is the number of points kept on the graph.
const DefaultHistoryPoints = 100

// Reading is one speed-test result. This is also the shape of the
// last-known-good cache file.
type Reading struct {
	// Download throughput in Mbps.
	Download float64 `json:"download"`

	// Upload throughput in Mbps.
	Upload float64 `json:"upload"`

	// Ping latency in milliseconds.
	Ping float64 `json:"ping"`
}

// Caption renders the status line printed after every cycle.
func (r Reading) Caption() string {
	return fmt.Sprintf("Download: %.2f Mbps | Upload: %.2f Mbps | Ping: %.2f ms", r.Download, r.Upload, r.Ping)
}

// History holds three parallel, equal-length sequences capped at Limit.
// The oldest points are dropped first.
type History struct {
	Timestamps []time.Time `json:"timestamps"`
	Download   []float64   `json:"download"`
	Upload     []float64   `json:"upload"`

	// Limit is the maximum number of points. Not persisted.
	Limit int `json:"-"`
}

// NewHistory returns an empty history capped at limit points.
// A non-positive limit means DefaultHistoryPoints.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryPoints
	}
	return &History{Limit: limit}
}

// Append adds one point and trims all three sequences from the front.
func (h *History) Append(ts time.Time, download, upload float64) {
	h.Timestamps = append(h.Timestamps, ts)
	h.Download = append(h.Download, download)
	h.Upload = append(h.Upload, upload)
	h.trim()
}

// Len returns the number of points.
func (h *History) Len() int {
	return len(h.Timestamps)
}

// Clone returns a deep copy safe to hand to renderers.
func (h *History) Clone() *History {
	c := &History{
		Timestamps: make([]time.Time, len(h.Timestamps)),
		Download:   make([]float64, len(h.Download)),
		Upload:     make([]float64, len(h.Upload)),
		Limit:      h.Limit,
	}
	copy(c.Timestamps, h.Timestamps)
	copy(c.Download, h.Download)
	copy(c.Upload, h.Upload)
	return c
}

// valid reports whether the three sequences line up. Restored histories
// that fail this are discarded.
func (h *History) valid() bool {
	return len(h.Timestamps) == len(h.Download) && len(h.Timestamps) == len(h.Upload)
}

func (h *History) trim() {
	limit := h.Limit
	if limit <= 0 {
		limit = DefaultHistoryPoints
	}
	if n := len(h.Timestamps); n > limit {
		h.Timestamps = h.Timestamps[n-limit:]
	}
	if n := len(h.Download); n > limit {
		h.Download = h.Download[n-limit:]
	}
	if n := len(h.Upload); n > limit {
		h.Upload = h.Upload[n-limit:]
	}
}

// Sample is the collector output for one cycle.
type Sample struct {
	// Reading is the fresh result, or the last known good one when Stale.
	Reading Reading `json:"reading"`

	// Stale is true when this cycle's speed test failed.
	Stale bool `json:"stale"`

	// Error holds the failure reason when Stale.
	Error string `json:"error,omitempty"`

	// History is a snapshot including this cycle's point.
	History *History `json:"history"`
}
