package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"gitlab.com/tinyland/lab/deck-scripts/internal/fonts"
)

const (
	// BadgeSize is the edge length of a square metric badge.
	BadgeSize = 72

	badgeValueSize = 16
	badgeUnitSize  = 12
	badgeValueY    = 15
	badgeUnitY     = 40
)

var badgeBackground = color.NRGBA{R: 0x2b, G: 0x2b, B: 0x2b, A: 0xff}

// Tier is the severity band a badge value falls in.
type Tier int

const (
	// TierNone means no thresholds apply; text is white.
	TierNone Tier = iota
	TierLow
	TierMedium
	TierHigh
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return "none"
	}
}

// Color returns the text color for the tier.
func (t Tier) Color() color.NRGBA {
	switch t {
	case TierLow:
		return color.NRGBA{R: 0x44, G: 0xff, B: 0x44, A: 0xff}
	case TierMedium:
		return color.NRGBA{R: 0xff, G: 0xaa, B: 0x00, A: 0xff}
	case TierHigh:
		return color.NRGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
	default:
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
}

// Thresholds are the two tier boundaries. Values strictly above High are
// TierHigh, strictly above Low are TierMedium, anything else TierLow.
type Thresholds struct {
	Low  float64
	High float64
}

// SelectTier maps value onto a tier. nil thresholds mean TierNone.
func SelectTier(value float64, th *Thresholds) Tier {
	switch {
	case th == nil:
		return TierNone
	case value > th.High:
		return TierHigh
	case value > th.Low:
		return TierMedium
	default:
		return TierLow
	}
}

// Badge is one metric key: a value printed with one decimal over its unit.
type Badge struct {
	Value float64
	Unit  string
	Tier  Tier
}

// Badge draws b on a dark 72x72 square. The value and unit are each
// centered horizontally.
func (r *Renderer) Badge(b Badge) *image.NRGBA {
	img := imaging.New(BadgeSize, BadgeSize, badgeBackground)
	col := b.Tier.Color()

	valueFace := r.fonts.Face(fonts.Bold, badgeValueSize)
	unitFace := r.fonts.Face(fonts.Regular, badgeUnitSize)

	value := fmt.Sprintf("%.1f", b.Value)
	vb := measure(valueFace, value)
	drawText(img, valueFace, value, (BadgeSize-vb.width)/2, badgeValueY, col)

	ub := measure(unitFace, b.Unit)
	drawText(img, unitFace, b.Unit, (BadgeSize-ub.width)/2, badgeUnitY, col)

	return img
}

// WriteBadge renders b and saves it to path.
func (r *Renderer) WriteBadge(b Badge, path string) error {
	if err := Save(r.Badge(b), path); err != nil {
		return err
	}
	r.logger.Debug("badge written", "path", path, "value", b.Value, "unit", b.Unit, "tier", b.Tier)
	return nil
}
