package stats

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	plotLineColor  = color.RGBA{R: 37, G: 150, B: 190, A: 255}
	plotMarkerShap = draw.SquareGlyph{}
)

const (
	plotH = 4 * vg.Inch
	plotW = 6 * vg.Inch
)

// PlotWindowedStat renders a single-statistic windowed result (one value
// per window) as a line-and-points PNG, for a quick visual sanity check.
// values[i] is plotted at the midpoint of [windowBounds[i],
// windowBounds[i+1]); xLabel/yLabel caption the axes.
func PlotWindowedStat(values, windowBounds []float64, xLabel, yLabel, outPrefix string) error {
	if len(values) != len(windowBounds)-1 {
		return fmt.Errorf("%d values for %d windows", len(values), len(windowBounds)-1)
	}
	p := plot.New()
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = (windowBounds[i] + windowBounds[i+1]) / 2
		pts[i].Y = v
	}
	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.Color = plotLineColor
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	points.Color = plotLineColor
	points.Shape = plotMarkerShap
	points.Radius = vg.Points(4)
	p.Add(line, points)
	return p.Save(plotW, plotH, fmt.Sprintf("%s.png", outPrefix))
}
