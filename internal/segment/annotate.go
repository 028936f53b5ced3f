package segment

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"beangauge/pkg/colorutil"
)

// Annotate draws each particle's fitted ellipse and id onto a copy of the
// stage crop. The caller owns the returned Mat.
func Annotate(stage gocv.Mat, particles []Particle) gocv.Mat {
	vis := stage.Clone()
	for _, p := range particles {
		center := image.Pt(int(math.Round(p.Center.X)), int(math.Round(p.Center.Y)))
		axes := image.Pt(int(math.Round(p.MajorPx/2)), int(math.Round(p.MinorPx/2)))
		if axes.X < 1 {
			axes.X = 1
		}
		if axes.Y < 1 {
			axes.Y = 1
		}
		gocv.EllipseWithParams(&vis, center, axes, p.OrientationDeg, 0, 360, colorutil.Green, 2, gocv.Line8, 0)
		gocv.PutText(&vis, fmt.Sprintf("%d", p.ID),
			image.Pt(center.X+axes.X+2, center.Y),
			gocv.FontHersheySimplex, 0.5, colorutil.Red, 1)
	}
	return vis
}
