// Package sheet defines the printed reference sheet geometry contract.
//
// The values here must match the sheet generator exactly. They are carried
// as versioned data values threaded through every pipeline stage, never
// recomputed ad hoc: a mismatch between the printed sheet and the geometry
// used for analysis is a silent correctness bug, not a crash.
package sheet

import (
	"fmt"

	"beangauge/pkg/geometry"
)

// MarkerID identifies one of the four corner fiducial markers.
// The id doubles as the index of the marker's outer corner in the
// detector's corner ordering: id 0 (top-left marker) contributes its
// corner 0 (its own top-left), id 1 its corner 1, and so on clockwise.
type MarkerID int

// Required marker ids, one per physical corner of the reference rectangle.
const (
	MarkerTopLeft MarkerID = iota
	MarkerTopRight
	MarkerBottomRight
	MarkerBottomLeft
)

// RequiredMarkerIDs lists the ids the rectifier needs, in corner order
// TL, TR, BR, BL.
var RequiredMarkerIDs = []MarkerID{
	MarkerTopLeft, MarkerTopRight, MarkerBottomRight, MarkerBottomLeft,
}

func (id MarkerID) String() string {
	switch id {
	case MarkerTopLeft:
		return "top-left"
	case MarkerTopRight:
		return "top-right"
	case MarkerBottomRight:
		return "bottom-right"
	case MarkerBottomLeft:
		return "bottom-left"
	default:
		return fmt.Sprintf("unknown(%d)", int(id))
	}
}

// StageShape selects the footprint of the measurement stage.
type StageShape int

const (
	StageRound StageShape = iota
	StageSquare
)

func (s StageShape) String() string {
	switch s {
	case StageRound:
		return "round"
	case StageSquare:
		return "square"
	default:
		return "unknown"
	}
}

// Geometry is the physical layout of one sheet revision, in millimeters.
// Canonical coordinates have their origin at the outer top-left corner of
// the reference rectangle, x growing right and y growing down.
type Geometry struct {
	Version string `json:"version"`

	WidthMM  float64 `json:"width_mm"`
	HeightMM float64 `json:"height_mm"`

	MarkerSizeMM float64 `json:"marker_size_mm"`

	// Grayscale ramp, ordered lightest to darkest. Expected targets are
	// strictly decreasing over the reproducible print range.
	GrayRampYMM        float64   `json:"gray_ramp_y_mm"`
	GrayRampXsMM       []float64 `json:"gray_ramp_xs_mm"`
	GrayExpected       []float64 `json:"gray_expected"`
	GraySampleRadiusMM float64   `json:"gray_sample_radius_mm"`

	// CMYK patch row: cyan, magenta, yellow, black centers.
	CMYKYMM            float64    `json:"cmyk_y_mm"`
	CMYKXsMM           [4]float64 `json:"cmyk_xs_mm"`
	CMYKSampleRadiusMM float64    `json:"cmyk_sample_radius_mm"`

	// Target neutral intensity for white balance derived from the C+M+Y mix.
	NeutralTarget float64 `json:"neutral_target"`

	StageCenterMM geometry.Point2D `json:"stage_center_mm"`
	StageShape    StageShape       `json:"stage_shape"`
	// StageHalfMM is the radius of a round stage or the half-width of a
	// square one.
	StageHalfMM float64 `json:"stage_half_mm"`

	// Printed verification ruler (left end of the baseline).
	RulerOriginMM geometry.Point2D `json:"ruler_origin_mm"`
	RulerLengthMM float64          `json:"ruler_length_mm"`
}

// Letter returns revision 1 of the US Letter sheet: 180x250mm reference
// rectangle, 15mm markers, 11-step ramp, CMYK row, round 100mm stage.
func Letter() Geometry {
	g := base("letter-v1")
	g.StageShape = StageRound
	return g
}

// A4 returns revision 1 of the A4 sheet. The calibration region is kept
// identical across paper sizes; only the stage is a 100x100mm square.
func A4() Geometry {
	g := base("a4-v1")
	g.StageShape = StageSquare
	return g
}

func base(version string) Geometry {
	xs := make([]float64, 11)
	expected := make([]float64, 11)
	for i := range xs {
		xs[i] = 55 + float64(i)*9.5
		// 255 down to 20 in 11 steps, truncated the way the sheet
		// generator quantizes its K values.
		expected[i] = float64(int(255 - float64(i)*(255-20)/10))
	}
	return Geometry{
		Version:            version,
		WidthMM:            180,
		HeightMM:           250,
		MarkerSizeMM:       15,
		GrayRampYMM:        45,
		GrayRampXsMM:       xs,
		GrayExpected:       expected,
		GraySampleRadiusMM: 1.5,
		CMYKYMM:            29,
		CMYKXsMM:           [4]float64{106, 120, 134, 148},
		CMYKSampleRadiusMM: 3,
		NeutralTarget:      128,
		StageCenterMM:      geometry.Point2D{X: 90, Y: 115},
		StageHalfMM:        50,
		RulerOriginMM:      geometry.Point2D{X: 40, Y: 230},
		RulerLengthMM:      100,
	}
}

// ByName returns the geometry registered under the given sheet name.
func ByName(name string) (Geometry, error) {
	switch name {
	case "letter", "letter-v1":
		return Letter(), nil
	case "a4", "a4-v1":
		return A4(), nil
	default:
		return Geometry{}, fmt.Errorf("unknown sheet geometry %q", name)
	}
}

// CanonicalCorners returns the four outer corners of the reference
// rectangle in canonical millimeter coordinates, ordered TL, TR, BR, BL.
func (g Geometry) CanonicalCorners() [4]geometry.Point2D {
	return [4]geometry.Point2D{
		{X: 0, Y: 0},
		{X: g.WidthMM, Y: 0},
		{X: g.WidthMM, Y: g.HeightMM},
		{X: 0, Y: g.HeightMM},
	}
}

// MarkerOrigin returns the canonical top-left corner of the marker square
// for the given id. Each marker sits flush with its corner of the
// reference rectangle.
func (g Geometry) MarkerOrigin(id MarkerID) geometry.Point2D {
	switch id {
	case MarkerTopLeft:
		return geometry.Point2D{X: 0, Y: 0}
	case MarkerTopRight:
		return geometry.Point2D{X: g.WidthMM - g.MarkerSizeMM, Y: 0}
	case MarkerBottomRight:
		return geometry.Point2D{X: g.WidthMM - g.MarkerSizeMM, Y: g.HeightMM - g.MarkerSizeMM}
	default:
		return geometry.Point2D{X: 0, Y: g.HeightMM - g.MarkerSizeMM}
	}
}

// StageBounds returns the axis-aligned canonical bounds of the stage.
func (g Geometry) StageBounds() geometry.Rect {
	return geometry.NewRect(
		g.StageCenterMM.X-g.StageHalfMM,
		g.StageCenterMM.Y-g.StageHalfMM,
		g.StageHalfMM*2,
		g.StageHalfMM*2,
	)
}

// Validate checks the internal consistency of the contract.
func (g Geometry) Validate() error {
	if g.WidthMM <= 0 || g.HeightMM <= 0 {
		return fmt.Errorf("sheet %s: non-positive dimensions", g.Version)
	}
	if len(g.GrayRampXsMM) != len(g.GrayExpected) {
		return fmt.Errorf("sheet %s: %d ramp patches but %d expected targets",
			g.Version, len(g.GrayRampXsMM), len(g.GrayExpected))
	}
	if len(g.GrayExpected) < 2 {
		return fmt.Errorf("sheet %s: ramp needs at least 2 steps", g.Version)
	}
	for i := 1; i < len(g.GrayExpected); i++ {
		if g.GrayExpected[i] >= g.GrayExpected[i-1] {
			return fmt.Errorf("sheet %s: expected ramp targets must be strictly decreasing (lightest to darkest), step %d is not", g.Version, i)
		}
	}
	if g.StageHalfMM <= 0 {
		return fmt.Errorf("sheet %s: non-positive stage size", g.Version)
	}
	b := g.StageBounds()
	if b.X < 0 || b.Y < 0 || b.X+b.Width > g.WidthMM || b.Y+b.Height > g.HeightMM {
		return fmt.Errorf("sheet %s: stage extends outside the reference rectangle", g.Version)
	}
	return nil
}
