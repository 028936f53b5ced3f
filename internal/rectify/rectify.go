// Package rectify computes the planar homography from the four fiducial
// correspondences and resamples the photograph into the canonical,
// metrically-known frame.
package rectify

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/mat"

	"beangauge/internal/markers"
	"beangauge/internal/sheet"
	"beangauge/pkg/geometry"
)

// DegenerateHomographyError reports that the four correspondences cannot
// determine a valid projective transform (duplicate or collinear source
// points). Fatal; it should not occur with four well-separated markers.
type DegenerateHomographyError struct {
	Reason string
}

func (e *DegenerateHomographyError) Error() string {
	return fmt.Sprintf("degenerate homography: %s", e.Reason)
}

// SourcePoints selects the designated outer corner of each required marker:
// marker id i contributes its own corner i, the corner farthest from the
// rectangle interior. Ordered TL, TR, BR, BL.
func SourcePoints(found map[int]markers.Detection) ([4]geometry.Point2D, error) {
	var src [4]geometry.Point2D
	for _, id := range sheet.RequiredMarkerIDs {
		d, ok := found[int(id)]
		if !ok {
			return src, fmt.Errorf("missing detection for marker id %d", int(id))
		}
		src[int(id)] = d.Corners[int(id)]
	}
	return src, nil
}

// Compute solves for the unique homography mapping the four source points
// onto the four destination points. The 8x8 linear system is solved
// directly; a singular or near-singular system is degenerate.
func Compute(src, dst [4]geometry.Point2D) (geometry.Homography, error) {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if src[i].Distance(src[j]) < 1e-6 {
				return geometry.Homography{}, &DegenerateHomographyError{
					Reason: fmt.Sprintf("duplicate source points %d and %d", i, j),
				}
			}
		}
	}

	// Unknowns h0..h7 with h8 fixed to 1. Each correspondence (x,y)->(u,v)
	// contributes:
	//   u = h0*x + h1*y + h2 - u*(h6*x + h7*y)
	//   v = h3*x + h4*y + h5 - v*(h6*x + h7*y)
	A := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		u, v := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		A.Set(i*2, 6, -u*x)
		A.Set(i*2, 7, -u*y)
		b.SetVec(i*2, u)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		A.Set(i*2+1, 6, -v*x)
		A.Set(i*2+1, 7, -v*y)
		b.SetVec(i*2+1, v)
	}

	var h mat.VecDense
	if err := h.SolveVec(A, b); err != nil {
		return geometry.Homography{}, &DegenerateHomographyError{
			Reason: fmt.Sprintf("correspondence system is singular: %v", err),
		}
	}

	H := geometry.Homography{
		h.AtVec(0), h.AtVec(1), h.AtVec(2),
		h.AtVec(3), h.AtVec(4), h.AtVec(5),
		h.AtVec(6), h.AtVec(7), 1,
	}
	if math.Abs(H.Det()) < 1e-9 {
		return geometry.Homography{}, &DegenerateHomographyError{Reason: "transform is not invertible"}
	}
	return H, nil
}

// Warp resamples the frame through the homography into a width x height
// canonical raster using inverse mapping with bilinear interpolation.
// The caller owns the returned Mat.
func Warp(frame gocv.Mat, h geometry.Homography, width, height int) gocv.Mat {
	m := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer m.Close()
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			m.SetDoubleAt(row, col, h[row*3+col])
		}
	}

	dst := gocv.NewMat()
	gocv.WarpPerspective(frame, &dst, m, image.Pt(width, height))
	return dst
}

// Rectify maps the marker outer corners onto the scaled canonical corners
// and resamples the frame. scale is in pixels per millimeter.
// The caller owns the returned Mat.
func Rectify(frame gocv.Mat, found map[int]markers.Detection, g sheet.Geometry, scale float64) (gocv.Mat, geometry.Homography, error) {
	src, err := SourcePoints(found)
	if err != nil {
		return gocv.NewMat(), geometry.Homography{}, err
	}

	var dst [4]geometry.Point2D
	for i, c := range g.CanonicalCorners() {
		dst[i] = c.Scale(scale)
	}

	h, err := Compute(src, dst)
	if err != nil {
		return gocv.NewMat(), geometry.Homography{}, err
	}

	width := int(math.Round(g.WidthMM * scale))
	height := int(math.Round(g.HeightMM * scale))
	return Warp(frame, h, width, height), h, nil
}
