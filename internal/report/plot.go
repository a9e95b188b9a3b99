package report

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/sitstand.report/internal/pipeline"
)

var (
	valleyColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	peakColor   = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// PitchPlot builds a plot of the aligned tilt with its extrema marked.
func PitchPlot(title string, res *pipeline.ResultSummary) (*plot.Plot, error) {
	seg := res.Segments
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %d repetitions, %s", title, res.Totals.Repetitions, res.Classification)
	p.X.Label.Text = "t (s)"
	p.Y.Label.Text = "tilt (deg)"
	p.Add(plotter.NewGrid())

	if len(seg.Time) == 0 {
		return p, nil
	}

	pts := make(plotter.XYs, len(seg.Time))
	for i, t := range seg.Time {
		pts[i] = plotter.XY{X: t, Y: seg.Pitch[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("tilt", line)

	for _, m := range []struct {
		name  string
		idx   []int
		col   color.Color
		shape draw.GlyphDrawer
	}{
		{"peaks", seg.Peaks, peakColor, draw.TriangleGlyph{}},
		{"valleys", seg.Valleys, valleyColor, draw.CircleGlyph{}},
	} {
		if len(m.idx) == 0 {
			continue
		}
		xy := make(plotter.XYs, len(m.idx))
		for i, k := range m.idx {
			xy[i] = plotter.XY{X: seg.Time[k], Y: seg.Pitch[k]}
		}
		sc, err := plotter.NewScatter(xy)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Color = m.col
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = m.shape
		p.Add(sc)
		p.Legend.Add(m.name, sc)
	}
	return p, nil
}

// WritePitchPNG renders PitchPlot as a 14x6 inch PNG.
func WritePitchPNG(w io.Writer, title string, res *pipeline.ResultSummary) error {
	p, err := PitchPlot(title, res)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
