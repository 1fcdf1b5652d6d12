package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/disintegration/imaging"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"gitlab.com/tinyland/lab/deck-scripts/internal/fonts"
)

// ErrNoPoints is returned when a chart has nothing to plot.
var ErrNoPoints = errors.New("render: no points to chart")

var (
	downloadColor = drawing.ColorFromHex("00ffff")
	uploadColor   = drawing.ColorFromHex("ff00ff")
	chartText     = drawing.ColorFromHex("e0e0e0")
	chartGrid     = drawing.ColorFromHex("808080")
)

// Series is the bandwidth history to plot. The three slices have equal
// length.
type Series struct {
	Times    []time.Time
	Download []float64
	Upload   []float64
}

// BandwidthChart plots download and upload throughput over time on a
// transparent width x height canvas.
func (r *Renderer) BandwidthChart(s Series, width, height int) (image.Image, error) {
	n := len(s.Times)
	if n == 0 {
		return nil, ErrNoPoints
	}
	if len(s.Download) != n || len(s.Upload) != n {
		return nil, fmt.Errorf("render: series length mismatch: %d times, %d download, %d upload",
			n, len(s.Download), len(s.Upload))
	}

	times, down, up := s.Times, s.Download, s.Upload
	// go-chart needs two distinct X values to build a range.
	if n == 1 {
		times = []time.Time{times[0], times[0].Add(time.Second)}
		down = []float64{down[0], down[0]}
		up = []float64{up[0], up[0]}
	}

	textStyle := chart.Style{FontColor: chartText}
	gridStyle := chart.Style{
		StrokeColor:     chartGrid,
		StrokeWidth:     1,
		StrokeDashArray: []float64{4, 4},
	}

	ch := chart.Chart{
		Title:      "Internet Bandwidth",
		TitleStyle: textStyle,
		Width:      width,
		Height:     height,
		Font:       r.fonts.Font(fonts.Regular),
		Background: chart.Style{
			FillColor:   drawing.ColorTransparent,
			StrokeColor: drawing.ColorTransparent,
			Padding:     chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{
			FillColor:   drawing.ColorTransparent,
			StrokeColor: drawing.ColorTransparent,
		},
		XAxis: chart.XAxis{
			Name:           "Time",
			NameStyle:      textStyle,
			Style:          textStyle,
			ValueFormatter: chart.TimeValueFormatterWithFormat("15:04"),
			GridMajorStyle: gridStyle,
		},
		YAxis: chart.YAxis{
			Name:           "Speed (Mbps)",
			NameStyle:      textStyle,
			Style:          textStyle,
			Range:          &chart.ContinuousRange{Min: 0, Max: yMax(down, up)},
			GridMajorStyle: gridStyle,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Download",
				XValues: times,
				YValues: down,
				Style:   chart.Style{StrokeColor: downloadColor, StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    "Upload",
				XValues: times,
				YValues: up,
				Style:   chart.Style{StrokeColor: uploadColor, StrokeWidth: 2},
			},
		},
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch, chart.Style{
		FillColor:   drawing.ColorTransparent,
		FontColor:   chartText,
		StrokeColor: chartText,
	})}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render: bandwidth chart: %w", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("render: decode bandwidth chart: %w", err)
	}

	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		img = imaging.Fit(img, width, height, imaging.Lanczos)
	}
	return img, nil
}

// WriteBandwidthChart renders the chart and saves it to path.
func (r *Renderer) WriteBandwidthChart(s Series, width, height int, path string) error {
	img, err := r.BandwidthChart(s, width, height)
	if err != nil {
		return err
	}
	if err := Save(img, path); err != nil {
		return err
	}
	r.logger.Debug("bandwidth chart written", "path", path, "points", len(s.Times))
	return nil
}

// yMax returns a Y ceiling with 10% headroom. Flat zero data still gets a
// non-empty range.
func yMax(series ...[]float64) float64 {
	m := 0.0
	for _, s := range series {
		for _, v := range s {
			if v > m {
				m = v
			}
		}
	}
	if m <= 0 {
		return 1
	}
	return m * 1.1
}
