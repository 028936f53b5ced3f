package segment

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"beangauge/pkg/colorutil"
	"beangauge/pkg/geometry"
)

// Minimum boundary points for an ellipse fit.
const ellipseFitMinPoints = 5

// extractParticles labels the 8-connected foreground regions of the mask,
// filters them by area and fits a shape descriptor to each survivor. The
// raw mean color is sampled under the region's exact pixels, not its
// bounding box.
func extractParticles(mask gocv.Mat, stage gocv.Mat, minAreaPx int) []Particle {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	n := gocv.ConnectedComponentsWithStats(mask, &labels, &stats, &centroids)

	particles := make([]Particle, 0, n)
	for label := 1; label < n; label++ {
		// Stats columns: left, top, width, height, area.
		area := int(stats.GetIntAt(label, 4))
		if area < minAreaPx {
			continue
		}
		bbox := image.Rect(
			int(stats.GetIntAt(label, 0)),
			int(stats.GetIntAt(label, 1)),
			int(stats.GetIntAt(label, 0)+stats.GetIntAt(label, 2)),
			int(stats.GetIntAt(label, 1)+stats.GetIntAt(label, 3)),
		)

		regionMask := componentMask(labels, label, bbox)

		stageRegion := stage.Region(bbox)
		mean := stageRegion.MeanWithMask(regionMask)
		stageRegion.Close()

		p := Particle{
			ID:     len(particles),
			AreaPx: area,
			Center: geometry.Point2D{
				X: centroids.GetDoubleAt(label, 0),
				Y: centroids.GetDoubleAt(label, 1),
			},
			RawMean: colorutil.RGB{R: mean.Val3, G: mean.Val2, B: mean.Val1},
		}
		p.MajorPx, p.MinorPx, p.OrientationDeg, p.EllipseFit = fitShape(regionMask, bbox, area)
		regionMask.Close()

		particles = append(particles, p)
	}
	return particles
}

// componentMask builds a binary mask of one labeled component, cropped to
// its bounding box.
func componentMask(labels gocv.Mat, label int, bbox image.Rectangle) gocv.Mat {
	m := gocv.NewMatWithSize(bbox.Dy(), bbox.Dx(), gocv.MatTypeCV8U)
	for y := bbox.Min.Y; y < bbox.Max.Y; y++ {
		for x := bbox.Min.X; x < bbox.Max.X; x++ {
			if int(labels.GetIntAt(y, x)) == label {
				m.SetUCharAt(y-bbox.Min.Y, x-bbox.Min.X, 255)
			}
		}
	}
	return m
}

// fitShape fits an ellipse to the region boundary when it has enough
// points; smaller regions get axes approximated from the pixel area and
// the bounding-box diagonal.
func fitShape(regionMask gocv.Mat, bbox image.Rectangle, area int) (major, minor, angleDeg float64, fitted bool) {
	contours := gocv.FindContours(regionMask, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	best := -1
	bestLen := 0
	for i := 0; i < contours.Size(); i++ {
		if l := contours.At(i).Size(); l > bestLen {
			best, bestLen = i, l
		}
	}

	if best >= 0 && bestLen >= ellipseFitMinPoints {
		ellipse := gocv.FitEllipse(contours.At(best))
		major = math.Max(float64(ellipse.Width), float64(ellipse.Height))
		minor = math.Min(float64(ellipse.Width), float64(ellipse.Height))
		if major > 0 && minor > 0 {
			return major, minor, ellipse.Angle, true
		}
	}

	// Too small for a fit: major from the bounding-box diagonal, minor
	// from the area of the equivalent ellipse.
	w, h := float64(bbox.Dx()), float64(bbox.Dy())
	major = math.Sqrt(w*w + h*h)
	minor = 4 * float64(area) / (math.Pi * major)
	if minor < 1 {
		minor = 1
	}
	if minor > major {
		minor = major
	}
	return major, minor, 0, false
}
