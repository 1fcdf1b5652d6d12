package bandwidth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// bitsPerMegabit converts speedtest-cli's bit/s figures to Mbps.
const bitsPerMegabit = 1e6

// ErrNotInstalled is returned when the speed-test binary cannot be run.
var ErrNotInstalled = errors.New("speed-test tool not installed")

// speedtestOutput maps the fields we use from `speedtest-cli --json`.
// Pointers distinguish a missing field from a zero measurement.
type speedtestOutput struct {
	Download *float64 `json:"download"`
	Upload   *float64 `json:"upload"`
	Ping     *float64 `json:"ping"`
}

// RunSpeedtest executes `<binary> --json` and parses the result. The caller
// bounds the run through ctx.
func RunSpeedtest(ctx context.Context, binary string) (*Reading, error) {
	cmd := exec.CommandContext(ctx, binary, "--json")
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("bandwidth: %s: %w", binary, ctx.Err())
		}
		return nil, fmt.Errorf("bandwidth: %s: %w", binary, err)
	}
	return parseSpeedtest(out)
}

// parseSpeedtest decodes speedtest-cli JSON into a Reading in Mbps.
func parseSpeedtest(data []byte) (*Reading, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("bandwidth: empty speedtest output")
	}

	var raw speedtestOutput
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bandwidth: parse speedtest output: %w", err)
	}
	if raw.Download == nil || raw.Upload == nil || raw.Ping == nil {
		return nil, errors.New("bandwidth: speedtest output missing download, upload or ping")
	}

	return &Reading{
		Download: *raw.Download / bitsPerMegabit,
		Upload:   *raw.Upload / bitsPerMegabit,
		Ping:     *raw.Ping,
	}, nil
}

// CheckInstalled runs `<binary> --version` and returns ErrNotInstalled if it
// cannot be started or exits non-zero.
func CheckInstalled(ctx context.Context, binary string) error {
	if err := exec.CommandContext(ctx, binary, "--version").Run(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotInstalled, binary, err)
	}
	return nil
}
