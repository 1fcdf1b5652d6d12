// Package color decides whether terminal output may be styled and provides
// the few message styles the deck-scripts programs print.
//
// NO_COLOR (https://no-color.org/) and non-terminal stdout both switch
// lipgloss to the Ascii profile so every Render call yields plain text.
// StreamDeck reads captions from stdout, so captions are never styled.
package color

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// ShouldDisableColor returns true if color output should be suppressed:
// NO_COLOR is set to any value, or f is not a terminal.
func ShouldDisableColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	if f == nil {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// Apply configures the global lipgloss renderer for output written to f.
// Returns true if color is enabled.
func Apply(f *os.File) bool {
	if ShouldDisableColor(f) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return false
	}
	return true
}

// ForceDisable unconditionally disables color output. Used by tests.
func ForceDisable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#44ff44")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffaa00"))
	hintStyle    = lipgloss.NewStyle().Faint(true)
)

// Success styles a completed-action message.
func Success(s string) string {
	return successStyle.Render(s)
}

// Warn styles a problem the user should look at.
func Warn(s string) string {
	return warnStyle.Render(s)
}

// Hint styles a follow-up suggestion.
func Hint(s string) string {
	return hintStyle.Render(s)
}
