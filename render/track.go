package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"

	"gitlab.com/tinyland/lab/deck-scripts/internal/fonts"
	"gitlab.com/tinyland/lab/deck-scripts/internal/format"
)

const (
	// TrackSize is the edge length of the now-playing card.
	TrackSize = 256

	trackTitleSize  = 22
	trackArtistSize = 18

	// trackMargin is the total horizontal margin used for wrap estimation.
	trackMargin = 20

	// trackBlockGap separates the title block from the artist block.
	trackBlockGap = 10

	// charWidthRatio estimates average glyph width as size/ratio.
	charWidthRatio = 1.8
)

// WrapWidth returns the wrap column for a font size on the track card.
func WrapWidth(size float64) int {
	w := int(float64(TrackSize-trackMargin) / (size / charWidthRatio))
	if w < 1 {
		return 1
	}
	return w
}

// Track draws the title above the artist, both wrapped and centered, white
// on black.
func (r *Renderer) Track(artist, title string) *image.NRGBA {
	img := imaging.New(TrackSize, TrackSize, color.Black)

	titleFace := r.fonts.Face(fonts.Regular, trackTitleSize)
	artistFace := r.fonts.Face(fonts.Regular, trackArtistSize)

	titleLines := format.Wrap(title, WrapWidth(trackTitleSize))
	artistLines := format.Wrap(artist, WrapWidth(trackArtistSize))

	total := blockHeight(titleFace, titleLines) + blockHeight(artistFace, artistLines)
	gap := len(titleLines) > 0 && len(artistLines) > 0
	if gap {
		total += trackBlockGap
	}

	y := (TrackSize - total) / 2
	y = drawBlock(img, titleFace, titleLines, y)
	if gap {
		y += trackBlockGap
	}
	drawBlock(img, artistFace, artistLines, y)

	return img
}

// WriteTrack renders the card and saves it to path.
func (r *Renderer) WriteTrack(artist, title, path string) error {
	if err := Save(r.Track(artist, title), path); err != nil {
		return err
	}
	r.logger.Debug("track card written", "path", path)
	return nil
}

// blockHeight sums each line's extent below the ascender top.
func blockHeight(face font.Face, lines []string) int {
	h := 0
	for _, line := range lines {
		h += measure(face, line).bottom
	}
	return h
}

// drawBlock draws centered lines from y down and returns the next y.
func drawBlock(img *image.NRGBA, face font.Face, lines []string, y int) int {
	for _, line := range lines {
		b := measure(face, line)
		drawText(img, face, line, (TrackSize-b.width)/2, y, color.White)
		y += b.height()
	}
	return y
}
