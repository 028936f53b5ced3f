package photometric

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"beangauge/internal/sheet"
	"beangauge/pkg/colorutil"
	"beangauge/pkg/geometry"
)

// ChannelCurves holds one tone curve per color channel, by name.
type ChannelCurves struct {
	R Curve
	G Curve
	B Curve
}

// Calibration is the per-frame photometric state: tone curves from the
// grayscale ramp and white-balance gains from the CMYK row. Built once per
// frame and read-only afterwards, so per-particle correction may run in
// parallel against it.
type Calibration struct {
	Curves ChannelCurves
	Gains  colorutil.RGB

	// Raw samples kept for diagnostics and plotting.
	RampObserved []colorutil.RGB
	CMYKObserved [4]colorutil.RGB
}

// Calibrate samples the grayscale ramp and CMYK patches of a rectified
// frame at the contract coordinates and derives the calibration.
func Calibrate(rectified gocv.Mat, g sheet.Geometry, scale float64) (*Calibration, error) {
	cal := &Calibration{
		RampObserved: make([]colorutil.RGB, len(g.GrayRampXsMM)),
	}

	obsR := make([]float64, len(g.GrayRampXsMM))
	obsG := make([]float64, len(g.GrayRampXsMM))
	obsB := make([]float64, len(g.GrayRampXsMM))
	for i, x := range g.GrayRampXsMM {
		c, err := sampleMean(rectified, geometry.Point2D{X: x, Y: g.GrayRampYMM}, g.GraySampleRadiusMM, scale)
		if err != nil {
			return nil, fmt.Errorf("ramp patch %d: %w", i, err)
		}
		cal.RampObserved[i] = c
		obsR[i], obsG[i], obsB[i] = c.R, c.G, c.B
	}

	cal.Curves = ChannelCurves{
		R: BuildCurve(obsR, g.GrayExpected),
		G: BuildCurve(obsG, g.GrayExpected),
		B: BuildCurve(obsB, g.GrayExpected),
	}

	for i, x := range g.CMYKXsMM {
		c, err := sampleMean(rectified, geometry.Point2D{X: x, Y: g.CMYKYMM}, g.CMYKSampleRadiusMM, scale)
		if err != nil {
			return nil, fmt.Errorf("cmyk patch %d: %w", i, err)
		}
		cal.CMYKObserved[i] = c
	}

	// The additive mixture of the cyan, magenta and yellow patches should
	// be colorimetrically near-neutral, so their unweighted average stands
	// in for neutral gray under the current lighting.
	cyan, magenta, yellow := cal.CMYKObserved[0], cal.CMYKObserved[1], cal.CMYKObserved[2]
	neutral := colorutil.RGB{
		R: (cyan.R + magenta.R + yellow.R) / 3,
		G: (cyan.G + magenta.G + yellow.G) / 3,
		B: (cyan.B + magenta.B + yellow.B) / 3,
	}
	cal.Gains = colorutil.RGB{
		R: gain(g.NeutralTarget, neutral.R),
		G: gain(g.NeutralTarget, neutral.G),
		B: gain(g.NeutralTarget, neutral.B),
	}
	return cal, nil
}

// gain guards against a non-positive observed estimate with a unit gain.
func gain(target, observed float64) float64 {
	if observed <= 0 {
		return 1
	}
	return target / observed
}

// Correct applies the fixed correction order to a raw color: tone curve
// per channel first, then the white-balance gain, clamped to 8-bit range.
func (c *Calibration) Correct(raw colorutil.RGB) colorutil.RGB {
	toned := colorutil.RGB{
		R: c.Curves.R.Apply(raw.R),
		G: c.Curves.G.Apply(raw.G),
		B: c.Curves.B.Apply(raw.B),
	}
	return colorutil.RGB{
		R: toned.R * c.Gains.R,
		G: toned.G * c.Gains.G,
		B: toned.B * c.Gains.B,
	}.Clamped()
}

// sampleMean averages the pixels of a square neighborhood centered at a
// canonical millimeter coordinate.
func sampleMean(img gocv.Mat, centerMM geometry.Point2D, radiusMM, scale float64) (colorutil.RGB, error) {
	cx := int(math.Round(centerMM.X * scale))
	cy := int(math.Round(centerMM.Y * scale))
	r := int(math.Round(radiusMM * scale))
	if r < 1 {
		r = 1
	}

	rect := image.Rect(cx-r, cy-r, cx+r, cy+r)
	if rect.Min.X < 0 || rect.Min.Y < 0 || rect.Max.X > img.Cols() || rect.Max.Y > img.Rows() {
		return colorutil.RGB{}, fmt.Errorf("sample window %v outside rectified frame %dx%d", rect, img.Cols(), img.Rows())
	}

	region := img.Region(rect)
	defer region.Close()
	mean := region.Mean()
	// Mat storage is BGR.
	return colorutil.RGB{R: mean.Val3, G: mean.Val2, B: mean.Val1}, nil
}

// Annotate marks the sampled patch neighborhoods on a copy of the
// rectified frame. The caller owns the returned Mat.
func Annotate(rectified gocv.Mat, g sheet.Geometry, scale float64) gocv.Mat {
	vis := rectified.Clone()
	for _, x := range g.GrayRampXsMM {
		center := image.Pt(int(math.Round(x*scale)), int(math.Round(g.GrayRampYMM*scale)))
		gocv.Circle(&vis, center, int(math.Round(g.GraySampleRadiusMM*scale)), colorutil.Red, 2)
	}
	for _, x := range g.CMYKXsMM {
		center := image.Pt(int(math.Round(x*scale)), int(math.Round(g.CMYKYMM*scale)))
		gocv.Circle(&vis, center, int(math.Round(g.CMYKSampleRadiusMM*scale)), colorutil.Blue, 2)
	}
	return vis
}
