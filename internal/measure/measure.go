// Package measure converts particle pixel geometry to millimeters and raw
// pixel color to calibrated color. Pure per-particle computation: the only
// shared state is the read-only calibration.
package measure

import (
	"beangauge/internal/photometric"
	"beangauge/internal/segment"
	"beangauge/pkg/colorutil"
)

// Measurement is the final calibrated record for one particle.
type Measurement struct {
	ID      int
	MajorMM float64
	MinorMM float64
	AreaPx  int
	Color   colorutil.RGB
	Luma    float64
}

// Particle measures a single particle. scalePxPerMM is the canonical
// frame scale; rulerCorrection is measured ruler length over the nominal
// length (1.0 when no override is given).
func Particle(p segment.Particle, cal *photometric.Calibration, scalePxPerMM, rulerCorrection float64) Measurement {
	corrected := cal.Correct(p.RawMean)
	return Measurement{
		ID:      p.ID,
		MajorMM: p.MajorPx / scalePxPerMM * rulerCorrection,
		MinorMM: p.MinorPx / scalePxPerMM * rulerCorrection,
		AreaPx:  p.AreaPx,
		Color:   corrected,
		Luma:    corrected.Luma(),
	}
}

// All measures every particle in order. Measurement of independent
// particles reads only the immutable calibration, so callers may also
// fan this out across goroutines; the sequential loop is kept because a
// frame rarely carries enough particles for the fan-out to pay off.
func All(particles []segment.Particle, cal *photometric.Calibration, scalePxPerMM, rulerCorrection float64) []Measurement {
	out := make([]Measurement, len(particles))
	for i, p := range particles {
		out[i] = Particle(p, cal, scalePxPerMM, rulerCorrection)
	}
	return out
}
