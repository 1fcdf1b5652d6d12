// Package format provides shared string and time formatting utilities.
package format

import (
	"fmt"
	"time"
)

// FormatAge renders how long ago something happened, given its age.
// Returns strings like "just now", "45s ago", "12m ago", "3h ago", "2d ago",
// or "never" for a zero age.
func FormatAge(d time.Duration) string {
	if d == 0 {
		return "never"
	}
	if d < 0 {
		d = -d
	}

	switch {
	case d < 10*time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
