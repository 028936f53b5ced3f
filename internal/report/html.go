package report

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"beangauge/internal/measure"
)

// SaveHTML writes a self-contained interactive report: size scatter plus
// lightness histogram.
func SaveHTML(ms []measure.Measurement, summary Summary, path string) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Particle Sizes",
			Subtitle: summary.String(),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Major axis (mm)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Minor axis (mm)"}),
	)
	points := make([]opts.ScatterData, len(ms))
	for i, m := range ms {
		points[i] = opts.ScatterData{Value: []interface{}{m.MajorMM, m.MinorMM}}
	}
	scatter.AddSeries("particles", points,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Lightness Distribution"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Lightness (L)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	labels, counts := lumaBins(ms, 20)
	bars := make([]opts.BarData, len(counts))
	for i, c := range counts {
		bars[i] = opts.BarData{Value: c}
	}
	bar.SetXAxis(labels)
	bar.AddSeries("particles", bars)

	page := components.NewPage()
	page.AddCharts(scatter, bar)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return f.Close()
}

// lumaBins buckets calibrated lightness into n equal-width bins.
func lumaBins(ms []measure.Measurement, n int) ([]string, []int) {
	labels := make([]string, n)
	counts := make([]int, n)
	if len(ms) == 0 {
		return labels, counts
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, m := range ms {
		lo = math.Min(lo, m.Luma)
		hi = math.Max(hi, m.Luma)
	}
	width := (hi - lo) / float64(n)
	if width <= 0 {
		width = 1
	}
	for i := range labels {
		labels[i] = fmt.Sprintf("%.0f", lo+(float64(i)+0.5)*width)
	}
	for _, m := range ms {
		idx := int((m.Luma - lo) / width)
		if idx >= n {
			idx = n - 1
		}
		counts[idx]++
	}
	return labels, counts
}
