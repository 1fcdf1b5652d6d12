// Package fonts resolves TrueType faces from a list of candidate paths and
// falls back to the built-in 7x13 bitmap face.
package fonts

import (
	"io"
	"log/slog"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Regular lists the sans-serif candidates in lookup order: Arch, Debian and
// Fedora DejaVu layouts, then macOS Arial, then a bare name resolved against
// the working directory.
var Regular = []string{
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"arial.ttf",
}

// Bold lists the bold candidates. Regular faces are the last resort before
// the bitmap font.
var Bold = []string{
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	"arial.ttf",
}

// Fallback is returned when no candidate loads.
var Fallback font.Face = basicfont.Face7x13

// Loader parses font files once and hands out sized faces.
type Loader struct {
	logger *slog.Logger
	parsed map[string]*truetype.Font
	failed map[string]bool
	warned bool

	// readFile reads a font file. Overridable for testing.
	readFile func(name string) ([]byte, error)
}

// NewLoader creates a Loader. If logger is nil, a no-op logger is used.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		logger:   logger,
		parsed:   make(map[string]*truetype.Font),
		failed:   make(map[string]bool),
		readFile: os.ReadFile,
	}
}

// Face returns a face of the given pixel size from the first candidate that
// parses. When none does, it logs a warning once and returns Fallback, whose
// size is fixed.
func (l *Loader) Face(candidates []string, size float64) font.Face {
	for _, path := range candidates {
		f := l.load(path)
		if f == nil {
			continue
		}
		return truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}

	if !l.warned {
		l.warned = true
		l.logger.Warn("no TrueType font found, using built-in bitmap font", "tried", len(candidates))
	}
	return Fallback
}

// Font returns the first parseable candidate, or nil when none loads.
func (l *Loader) Font(candidates []string) *truetype.Font {
	for _, path := range candidates {
		if f := l.load(path); f != nil {
			return f
		}
	}
	return nil
}

func (l *Loader) load(path string) *truetype.Font {
	if f, ok := l.parsed[path]; ok {
		return f
	}
	if l.failed[path] {
		return nil
	}

	data, err := l.readFile(path)
	if err != nil {
		l.failed[path] = true
		return nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		l.failed[path] = true
		l.logger.Debug("skipping unparseable font", "path", path, "error", err)
		return nil
	}

	l.logger.Debug("loaded font", "path", path)
	l.parsed[path] = f
	return f
}
