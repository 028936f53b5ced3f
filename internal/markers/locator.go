// Package markers locates the square binary fiducials printed at the
// corners of the reference sheet.
package markers

import (
	"fmt"
	"image"
	"log"
	"sort"

	"gocv.io/x/gocv"

	"beangauge/pkg/colorutil"
	"beangauge/pkg/geometry"
)

// cv::aruco::CORNER_REFINE_SUBPIX
const cornerRefineSubpix = 1

// Detection is one decoded fiducial with its corners in the marker's own
// frame: index 0 is the marker's top-left, then clockwise. The ordering is
// what lets the rectifier pick the outer corner per marker id.
type Detection struct {
	ID      int
	Corners [4]geometry.Point2D
}

// Options configures marker detection.
type Options struct {
	// Adaptive threshold window sweep used by the decoder.
	AdaptiveThreshWinSizeMin  int
	AdaptiveThreshWinSizeMax  int
	AdaptiveThreshWinSizeStep int
	// Gaussian pre-filter kernel applied before decoding; must be odd.
	PreBlurKernel int
}

// DefaultOptions returns detection parameters tuned for printed 15mm
// markers photographed at arm's length.
func DefaultOptions() Options {
	return Options{
		AdaptiveThreshWinSizeMin:  3,
		AdaptiveThreshWinSizeMax:  23,
		AdaptiveThreshWinSizeStep: 10,
		PreBlurKernel:             3,
	}
}

// InsufficientMarkersError reports that fewer than the required fiducials
// were decoded. It is fatal: no rectification is attempted from a partial
// correspondence set.
type InsufficientMarkersError struct {
	Found    []int // ids actually decoded, sorted
	Required []int
}

func (e *InsufficientMarkersError) Error() string {
	return fmt.Sprintf("found %d of %d required fiducial markers (ids %v)",
		len(e.Found), len(e.Required), e.Found)
}

// Detect decodes all fiducials visible in the frame. The frame is
// grayscaled and lightly blurred before decoding; corner positions are
// refined to sub-pixel accuracy.
func Detect(frame gocv.Mat, opts Options) []Detection {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	k := opts.PreBlurKernel
	if k > 1 {
		gocv.GaussianBlur(gray, &gray, image.Pt(k, k), 0, 0, gocv.BorderDefault)
	}

	params := gocv.NewArucoDetectorParameters()
	params.SetAdaptiveThreshWinSizeMin(opts.AdaptiveThreshWinSizeMin)
	params.SetAdaptiveThreshWinSizeMax(opts.AdaptiveThreshWinSizeMax)
	params.SetAdaptiveThreshWinSizeStep(opts.AdaptiveThreshWinSizeStep)
	params.SetCornerRefinementMethod(cornerRefineSubpix)

	detector := gocv.NewArucoDetectorWithParams(
		gocv.GetPredefinedDictionary(gocv.ArucoDict4x4_50), params)
	defer detector.Close()

	corners, ids, _ := detector.DetectMarkers(gray)

	detections := make([]Detection, 0, len(ids))
	for i, id := range ids {
		if len(corners[i]) != 4 {
			continue
		}
		var d Detection
		d.ID = id
		for j, c := range corners[i] {
			d.Corners[j] = geometry.Point2D{X: float64(c.X), Y: float64(c.Y)}
		}
		detections = append(detections, d)
	}
	return detections
}

// SelectRequired picks one detection per required id, first seen wins.
// Duplicate detections of an id are a warning, not a failure. If any
// required id is missing it returns an InsufficientMarkersError listing
// what was actually found.
func SelectRequired(detections []Detection, required []int) (map[int]Detection, error) {
	found := make(map[int]Detection, len(required))
	want := make(map[int]bool, len(required))
	for _, id := range required {
		want[id] = true
	}

	for _, d := range detections {
		if !want[d.ID] {
			continue
		}
		if _, dup := found[d.ID]; dup {
			log.Printf("markers: duplicate detection for id %d, keeping first", d.ID)
			continue
		}
		found[d.ID] = d
	}

	if len(found) < len(required) {
		ids := make([]int, 0, len(found))
		for id := range found {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		return nil, &InsufficientMarkersError{Found: ids, Required: append([]int(nil), required...)}
	}
	return found, nil
}

// Annotate draws the detected marker outlines and ids onto a copy of the
// frame for diagnostics. The caller owns the returned Mat.
func Annotate(frame gocv.Mat, detections []Detection) gocv.Mat {
	vis := frame.Clone()
	for _, d := range detections {
		for i := 0; i < 4; i++ {
			a := d.Corners[i]
			b := d.Corners[(i+1)%4]
			gocv.Line(&vis, image.Pt(int(a.X), int(a.Y)), image.Pt(int(b.X), int(b.Y)), colorutil.Green, 2)
		}
		origin := d.Corners[0]
		gocv.PutText(&vis, fmt.Sprintf("%d", d.ID),
			image.Pt(int(origin.X), int(origin.Y)-6),
			gocv.FontHersheySimplex, 0.8, colorutil.Red, 2)
	}
	return vis
}

// DebugBinarization produces the adaptive-threshold view of the frame the
// decoder effectively works from. Written on detection failure to help
// diagnose lighting and print-quality problems.
func DebugBinarization(frame gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	bin := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &bin, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, 21, 7)
	return bin
}
