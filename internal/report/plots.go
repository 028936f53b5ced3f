package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"beangauge/internal/measure"
	"beangauge/internal/photometric"
)

// SaveCurvePlot renders the per-channel calibration curves with a dashed
// identity reference, mirroring the diagnostic the pipeline has always
// shipped alongside the table.
func SaveCurvePlot(curves photometric.ChannelCurves, path string) error {
	p := plot.New()
	p.Title.Text = "Calibration Curves"
	p.X.Label.Text = "Observed intensity"
	p.Y.Label.Text = "Corrected intensity"

	channels := []struct {
		name  string
		curve photometric.Curve
		color color.RGBA
	}{
		{"red", curves.R, color.RGBA{R: 200, A: 255}},
		{"green", curves.G, color.RGBA{G: 160, A: 255}},
		{"blue", curves.B, color.RGBA{B: 200, A: 255}},
	}
	for _, ch := range channels {
		xys := make(plotter.XYs, 256)
		for i := 0; i < 256; i++ {
			xys[i].X = float64(i)
			xys[i].Y = float64(ch.curve[i])
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("curve plot %s: %w", ch.name, err)
		}
		line.Color = ch.color
		p.Add(line)
		p.Legend.Add(ch.name, line)
	}

	identity, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 255, Y: 255}})
	if err != nil {
		return fmt.Errorf("curve plot identity: %w", err)
	}
	identity.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(identity)
	p.Legend.Add("linear", identity)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// SaveSizeHistogram renders the major-axis size distribution.
func SaveSizeHistogram(ms []measure.Measurement, path string) error {
	if len(ms) == 0 {
		return fmt.Errorf("size histogram: no measurements")
	}
	vals := make(plotter.Values, len(ms))
	for i, m := range ms {
		vals[i] = m.MajorMM
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Particle Size Distribution (N=%d)", len(ms))
	p.X.Label.Text = "Major axis (mm)"
	p.Y.Label.Text = "Count"

	h, err := plotter.NewHist(vals, 20)
	if err != nil {
		return fmt.Errorf("size histogram: %w", err)
	}
	p.Add(h)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}

// SaveSizeScatter renders major vs minor axis per particle.
func SaveSizeScatter(ms []measure.Measurement, path string) error {
	if len(ms) == 0 {
		return fmt.Errorf("size scatter: no measurements")
	}
	xys := make(plotter.XYs, len(ms))
	for i, m := range ms {
		xys[i].X = m.MajorMM
		xys[i].Y = m.MinorMM
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Particle Sizes (N=%d)", len(ms))
	p.X.Label.Text = "Major axis (mm)"
	p.Y.Label.Text = "Minor axis (mm)"

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("size scatter: %w", err)
	}
	p.Add(s)

	return p.Save(6*vg.Inch, 4*vg.Inch, path)
}
