// Package render draws the StreamDeck key images: metric badges, the
// now-playing text card and the bandwidth line chart.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"gitlab.com/tinyland/lab/deck-scripts/internal/fonts"
)

// Renderer draws key images with fonts resolved through a fonts.Loader.
type Renderer struct {
	fonts  *fonts.Loader
	logger *slog.Logger
}

// NewRenderer creates a Renderer. A nil loader gets a fresh one using the
// same logger. If logger is nil, a no-op logger is used.
func NewRenderer(loader *fonts.Loader, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if loader == nil {
		loader = fonts.NewLoader(logger)
	}
	return &Renderer{fonts: loader, logger: logger}
}

// Save writes img to path, creating parent directories. The format follows
// the file extension.
func Save(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("render: create directory for %s: %w", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}
	return nil
}

// textBox is the measured extent of a string, relative to a pen placed at
// the top-left of the face's ascender box.
type textBox struct {
	width  int
	top    int
	bottom int
}

// height is the ink height of the string.
func (b textBox) height() int {
	return b.bottom - b.top
}

func measure(face font.Face, s string) textBox {
	bounds, _ := font.BoundString(face, s)
	ascent := face.Metrics().Ascent.Ceil()
	return textBox{
		width:  (bounds.Max.X - bounds.Min.X).Ceil(),
		top:    ascent + bounds.Min.Y.Floor(),
		bottom: ascent + bounds.Max.Y.Ceil(),
	}
}

// drawText draws s with its ascender box's top-left corner at (x, y).
func drawText(dst draw.Image, face font.Face, s string, x, y int, col color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}
