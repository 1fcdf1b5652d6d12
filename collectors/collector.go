// Package collectors defines the sampling interface shared by the deck-scripts
// programs. Each collector reads one external source (a pseudo-file, a CLI
// tool) and returns a structured, JSON-serializable result. Failures that the
// caller can paper over are reported as warnings, not errors.
package collectors

import (
	"context"
	"time"
)

// Collector is implemented by every sampler in deck-scripts.
type Collector interface {
	// Name returns the collector's identifier (e.g. "sysmetrics", "bandwidth").
	Name() string

	// Description returns a human-readable description of what is sampled.
	Description() string

	// Interval returns the recommended polling interval. One-shot programs
	// ignore it.
	Interval() time.Duration

	// Collect samples the source once. Non-fatal issues are returned as
	// Warnings alongside substituted defaults. An error is returned only when
	// the context is cancelled.
	Collect(ctx context.Context) (*CollectResult, error)
}

// CollectResult holds the output of a collection run.
type CollectResult struct {
	// Collector is the name of the collector that produced this result.
	Collector string `json:"collector"`

	// Timestamp records when the collection completed.
	Timestamp time.Time `json:"timestamp"`

	// Data is the collector-specific structured data.
	Data interface{} `json:"data"`

	// Warnings contains non-fatal issues encountered during collection,
	// such as an unreadable pseudo-file or a failed CLI call.
	Warnings []string `json:"warnings,omitempty"`
}

// HasWarnings reports whether the run substituted any defaults.
func (r *CollectResult) HasWarnings() bool {
	return r != nil && len(r.Warnings) > 0
}

// CheckContext returns ctx.Err() if ctx is already done. Every Collect
// starts with it.
func CheckContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
