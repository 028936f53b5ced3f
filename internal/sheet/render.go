package sheet

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"beangauge/pkg/colorutil"
	"beangauge/pkg/geometry"
)

// arucoPatterns holds the DICT_4X4_50 data bits for marker ids 0-3.
// Row 0 is the top of the marker in its canonical orientation;
// 1 means white (paper), 0 means black (ink).
var arucoPatterns = map[MarkerID][4][4]int{
	MarkerTopLeft: {
		{1, 0, 1, 1},
		{0, 1, 0, 1},
		{0, 0, 1, 1},
		{0, 0, 1, 0},
	},
	MarkerTopRight: {
		{0, 1, 1, 1},
		{0, 0, 0, 1},
		{0, 0, 0, 0},
		{1, 1, 0, 1},
	},
	MarkerBottomRight: {
		{0, 0, 0, 0},
		{0, 0, 1, 1},
		{0, 1, 0, 1},
		{1, 0, 0, 1},
	},
	MarkerBottomLeft: {
		{1, 0, 0, 1},
		{0, 1, 1, 0},
		{0, 0, 1, 0},
		{0, 1, 0, 0},
	},
}

// Render draws the sheet as a canonical BGR raster at the given scale in
// pixels per millimeter: markers at the four corners, grayscale ramp,
// CMYK row, verification ruler and stage outline, on a white background.
// The raster is what a perfectly rectified photograph of the sheet would
// look like; tests and the sheetproof tool build on it.
// The caller owns the returned Mat.
func Render(g Geometry, scale float64) gocv.Mat {
	w := int(math.Round(g.WidthMM * scale))
	h := int(math.Round(g.HeightMM * scale))
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), h, w, gocv.MatTypeCV8UC3)

	for _, id := range RequiredMarkerIDs {
		renderMarker(&img, g, id, scale)
	}

	// Grayscale ramp: 8mm patches centered on the contract coordinates,
	// filled with the expected target intensity.
	const grayPatchMM = 8
	for i, x := range g.GrayRampXsMM {
		v := uint8(g.GrayExpected[i])
		fillRectMM(&img, x-grayPatchMM/2, g.GrayRampYMM-grayPatchMM/2, grayPatchMM, grayPatchMM, scale,
			color.RGBA{R: v, G: v, B: v, A: 255})
	}

	// CMYK row: 12mm patches with ideal sRGB ink approximations.
	const cmykPatchMM = 12
	inks := [4]color.RGBA{
		colorutil.Cyan,
		colorutil.Magenta,
		colorutil.Yellow,
		colorutil.Black,
	}
	for i, x := range g.CMYKXsMM {
		fillRectMM(&img, x-cmykPatchMM/2, g.CMYKYMM-cmykPatchMM/2, cmykPatchMM, cmykPatchMM, scale, inks[i])
	}

	renderRuler(&img, g, scale)
	renderStageOutline(&img, g, scale)

	return img
}

// renderMarker draws one 6x6 fiducial: a one-cell black border around the
// 4x4 data grid, matching how the sheet generator lays down ink.
func renderMarker(img *gocv.Mat, g Geometry, id MarkerID, scale float64) {
	origin := g.MarkerOrigin(id)
	cell := g.MarkerSizeMM / 6

	fillRectMM(img, origin.X, origin.Y, g.MarkerSizeMM, g.MarkerSizeMM, scale, colorutil.Black)

	pattern := arucoPatterns[id]
	white := colorutil.White
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if pattern[row][col] == 1 {
				fillRectMM(img,
					origin.X+float64(col+1)*cell,
					origin.Y+float64(row+1)*cell,
					cell, cell, scale, white)
			}
		}
	}
}

func renderRuler(img *gocv.Mat, g Geometry, scale float64) {
	thickness := int(math.Max(1, math.Round(0.4*scale)))
	y := int(math.Round(g.RulerOriginMM.Y * scale))
	x0 := int(math.Round(g.RulerOriginMM.X * scale))
	x1 := int(math.Round((g.RulerOriginMM.X + g.RulerLengthMM) * scale))
	gocv.Line(img, image.Pt(x0, y), image.Pt(x1, y), colorutil.Black, thickness)

	for i := 0; i <= 10; i++ {
		tickMM := 3.0
		if i%5 == 0 {
			tickMM = 5.0
		}
		tx := int(math.Round((g.RulerOriginMM.X + float64(i)*10) * scale))
		gocv.Line(img, image.Pt(tx, y), image.Pt(tx, y-int(math.Round(tickMM*scale))), colorutil.Black, thickness)
	}
}

func renderStageOutline(img *gocv.Mat, g Geometry, scale float64) {
	lightGray := color.RGBA{R: 211, G: 211, B: 211, A: 255}
	thickness := int(math.Max(1, math.Round(0.5*scale)))
	center := image.Pt(
		int(math.Round(g.StageCenterMM.X*scale)),
		int(math.Round(g.StageCenterMM.Y*scale)),
	)
	half := int(math.Round(g.StageHalfMM * scale))
	if g.StageShape == StageRound {
		gocv.Circle(img, center, half, lightGray, thickness)
		return
	}
	gocv.Rectangle(img, image.Rect(center.X-half, center.Y-half, center.X+half, center.Y+half), lightGray, thickness)
}

// DrawSpecimen stamps a filled ellipse of the given axis lengths onto a
// rendered sheet, for building synthetic fixtures. Angle is in degrees.
func DrawSpecimen(img *gocv.Mat, centerMM geometry.Point2D, majorMM, minorMM, angleDeg, scale float64, c color.RGBA) {
	center := image.Pt(int(math.Round(centerMM.X*scale)), int(math.Round(centerMM.Y*scale)))
	axes := image.Pt(int(math.Round(majorMM/2*scale)), int(math.Round(minorMM/2*scale)))
	gocv.EllipseWithParams(img, center, axes, angleDeg, 0, 360, c, -1, gocv.Line8, 0)
}

func fillRectMM(img *gocv.Mat, xMM, yMM, wMM, hMM, scale float64, c color.RGBA) {
	r := image.Rect(
		int(math.Round(xMM*scale)),
		int(math.Round(yMM*scale)),
		int(math.Round((xMM+wMM)*scale)),
		int(math.Round((yMM+hMM)*scale)),
	)
	gocv.Rectangle(img, r, c, -1)
}
