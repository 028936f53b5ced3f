// Package segment isolates the measurement stage of a rectified frame and
// extracts the foreground particles on it.
package segment

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"beangauge/internal/sheet"
	"beangauge/pkg/colorutil"
	"beangauge/pkg/geometry"
)

// Mode selects the segmentation strategy.
type Mode int

const (
	// ModeCoarse targets whole beans and similar blobs spanning many
	// pixels: background subtraction plus morphological cleanup.
	ModeCoarse Mode = iota
	// ModeFine targets grind dust: a Difference-of-Gaussians band-pass
	// that keeps even single-pixel specks alive.
	ModeFine
)

func (m Mode) String() string {
	switch m {
	case ModeCoarse:
		return "coarse"
	case ModeFine:
		return "fine"
	default:
		return "unknown"
	}
}

// ParseMode parses a strategy name from configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "coarse", "beans":
		return ModeCoarse, nil
	case "fine", "grind":
		return ModeFine, nil
	default:
		return ModeCoarse, fmt.Errorf("unknown segmentation mode %q", s)
	}
}

// Options configures segmentation.
type Options struct {
	Mode Mode

	// MinAreaPx discards regions below this pixel count. Regions exactly
	// at the minimum are retained.
	MinAreaPx int

	// Threshold is the foreground cutoff applied to the normalized
	// high-pass image.
	Threshold float32

	// Coarse-mode parameters.
	DenoiseKernel   int     // Gaussian denoise kernel, odd
	BackgroundSigma float64 // wide blur approximating the illumination trend
	MorphKernel     int     // ellipse structuring element size

	// Fine-mode parameters: the two nearby Gaussian scales of the
	// band-pass.
	DoGSigmaNarrow float64
	DoGSigmaWide   float64
}

// DefaultOptions returns the tuned parameters for a mode.
func DefaultOptions(m Mode) Options {
	if m == ModeFine {
		return Options{
			Mode:           ModeFine,
			MinAreaPx:      1,
			Threshold:      25,
			DoGSigmaNarrow: 1.2,
			DoGSigmaWide:   2.4,
		}
	}
	return Options{
		Mode:            ModeCoarse,
		MinAreaPx:       50,
		Threshold:       15,
		DenoiseKernel:   5,
		BackgroundSigma: 30,
		MorphKernel:     5,
	}
}

// Particle is one connected foreground region with its fitted shape
// descriptor and raw mean color. Values are immutable once created;
// coordinates and lengths are in stage-local pixels.
type Particle struct {
	ID             int
	AreaPx         int
	Center         geometry.Point2D
	MajorPx        float64
	MinorPx        float64
	OrientationDeg float64
	// EllipseFit reports whether the axes come from an ellipse fit or
	// from the area/bounding-box approximation used for tiny regions.
	EllipseFit bool
	RawMean    colorutil.RGB
}

// Result carries the particles plus the intermediate rasters for
// diagnostics. Close releases the rasters.
type Result struct {
	Particles []Particle

	Stage    gocv.Mat // BGR stage crop
	HighPass gocv.Mat // foreground-emphasis image
	Mask     gocv.Mat // final binary mask
}

// Close releases the diagnostic rasters.
func (r *Result) Close() {
	if r == nil {
		return
	}
	for _, m := range []*gocv.Mat{&r.Stage, &r.HighPass, &r.Mask} {
		if !m.Empty() {
			m.Close()
		}
	}
}

// Segment crops the stage region, separates foreground with the configured
// strategy, masks to the stage footprint and extracts the particles.
func Segment(rectified gocv.Mat, g sheet.Geometry, scale float64, opts Options) (*Result, error) {
	bounds := g.StageBounds()
	rect := image.Rect(
		int(math.Round(bounds.X*scale)),
		int(math.Round(bounds.Y*scale)),
		int(math.Round((bounds.X+bounds.Width)*scale)),
		int(math.Round((bounds.Y+bounds.Height)*scale)),
	).Intersect(image.Rect(0, 0, rectified.Cols(), rectified.Rows()))
	if rect.Empty() {
		return nil, fmt.Errorf("stage region %v outside rectified frame", rect)
	}

	roi := rectified.Region(rect)
	stage := roi.Clone()
	roi.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(stage, &gray, gocv.ColorBGRToGray)

	strategy := strategyFor(opts.Mode)
	mask, highPass := strategy.Foreground(gray, opts)

	applyStageFootprint(&mask, g.StageShape)

	particles := extractParticles(mask, stage, opts.MinAreaPx)

	return &Result{
		Particles: particles,
		Stage:     stage,
		HighPass:  highPass,
		Mask:      mask,
	}, nil
}

// applyStageFootprint zeroes everything outside the stage's printed
// footprint, pulled in slightly to exclude the outline and edge artifacts.
func applyStageFootprint(mask *gocv.Mat, shape sheet.StageShape) {
	h, w := mask.Rows(), mask.Cols()
	footprint := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	defer footprint.Close()

	if shape == sheet.StageRound {
		r := int(float64(min(h, w)) * 0.48)
		gocv.Circle(&footprint, image.Pt(w/2, h/2), r, colorutil.White, -1)
	} else {
		insetX := int(float64(w) * 0.02)
		insetY := int(float64(h) * 0.02)
		gocv.Rectangle(&footprint, image.Rect(insetX, insetY, w-insetX, h-insetY), colorutil.White, -1)
	}

	gocv.BitwiseAnd(*mask, footprint, mask)
}
