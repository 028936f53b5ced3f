package report

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"beangauge/internal/measure"
)

// Summary aggregates one run's measurements.
type Summary struct {
	Count       int
	MeanMajorMM float64
	MeanMinorMM float64
	StdMajorMM  float64
	MeanLuma    float64
}

// Summarize computes the run summary. An empty set yields a zero summary.
func Summarize(ms []measure.Measurement) Summary {
	if len(ms) == 0 {
		return Summary{}
	}
	major := make([]float64, len(ms))
	minor := make([]float64, len(ms))
	luma := make([]float64, len(ms))
	for i, m := range ms {
		major[i] = m.MajorMM
		minor[i] = m.MinorMM
		luma[i] = m.Luma
	}
	return Summary{
		Count:       len(ms),
		MeanMajorMM: stat.Mean(major, nil),
		MeanMinorMM: stat.Mean(minor, nil),
		StdMajorMM:  stat.StdDev(major, nil),
		MeanLuma:    stat.Mean(luma, nil),
	}
}

func (s Summary) String() string {
	if s.Count == 0 {
		return "no particles"
	}
	return fmt.Sprintf("%d particles, mean %.2fmm x %.2fmm (major sd %.2f), mean lightness %.1f",
		s.Count, s.MeanMajorMM, s.MeanMinorMM, s.StdMajorMM, s.MeanLuma)
}
