package rectify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"beangauge/internal/markers"
	"beangauge/internal/sheet"
	"beangauge/pkg/geometry"
)

func TestComputeMapsCornersExactly(t *testing.T) {
	t.Parallel()

	// A convincingly skewed photograph of a 180x250 rectangle.
	src := [4]geometry.Point2D{
		{X: 103.2, Y: 88.7},
		{X: 931.5, Y: 121.4},
		{X: 1010.8, Y: 1290.2},
		{X: 64.1, Y: 1333.9},
	}
	dst := [4]geometry.Point2D{
		{X: 0, Y: 0},
		{X: 1080, Y: 0},
		{X: 1080, Y: 1500},
		{X: 0, Y: 1500},
	}

	h, err := Compute(src, dst)
	require.NoError(t, err)

	for i := range src {
		got := h.Apply(src[i])
		assert.InDelta(t, dst[i].X, got.X, 1e-6, "corner %d x", i)
		assert.InDelta(t, dst[i].Y, got.Y, 1e-6, "corner %d y", i)
	}
}

func TestComputeIdentityWhenAligned(t *testing.T) {
	t.Parallel()

	pts := [4]geometry.Point2D{{0, 0}, {100, 0}, {100, 140}, {0, 140}}
	h, err := Compute(pts, pts)
	require.NoError(t, err)

	mid := geometry.Point2D{X: 37.5, Y: 101.25}
	got := h.Apply(mid)
	assert.InDelta(t, mid.X, got.X, 1e-9)
	assert.InDelta(t, mid.Y, got.Y, 1e-9)
}

func TestComputeRejectsDuplicatePoints(t *testing.T) {
	t.Parallel()

	src := [4]geometry.Point2D{{0, 0}, {0, 0}, {100, 100}, {0, 100}}
	dst := [4]geometry.Point2D{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

	_, err := Compute(src, dst)
	var degen *DegenerateHomographyError
	require.ErrorAs(t, err, &degen)
}

func TestComputeRejectsCollinearPoints(t *testing.T) {
	t.Parallel()

	src := [4]geometry.Point2D{{0, 0}, {10, 0}, {20, 0}, {30, 0}}
	dst := [4]geometry.Point2D{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

	_, err := Compute(src, dst)
	var degen *DegenerateHomographyError
	require.ErrorAs(t, err, &degen)
}

func TestWarpIdentityPreservesFrame(t *testing.T) {
	g := sheet.Letter()
	frame := sheet.Render(g, 2)
	defer frame.Close()

	corners := g.CanonicalCorners()
	var pts [4]geometry.Point2D
	for i, c := range corners {
		pts[i] = c.Scale(2)
	}
	h, err := Compute(pts, pts)
	require.NoError(t, err)

	warped := Warp(frame, h, frame.Cols(), frame.Rows())
	defer warped.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(frame, warped, &diff)
	assert.Zero(t, gocv.Norm(diff, gocv.NormL1))
}

func TestSourcePointsPicksOuterCorners(t *testing.T) {
	t.Parallel()

	found := make(map[int]markers.Detection, 4)
	for _, id := range sheet.RequiredMarkerIDs {
		var d markers.Detection
		d.ID = int(id)
		for j := 0; j < 4; j++ {
			d.Corners[j] = geometry.Point2D{
				X: float64(int(id)*1000 + j),
				Y: float64(int(id)*1000 + j*10),
			}
		}
		found[int(id)] = d
	}

	src, err := SourcePoints(found)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		assert.Equal(t, found[i].Corners[i], src[i], "marker %d", i)
	}
}

func TestSourcePointsMissingDetection(t *testing.T) {
	t.Parallel()

	found := map[int]markers.Detection{
		0: {ID: 0},
		1: {ID: 1},
		3: {ID: 3},
	}
	_, err := SourcePoints(found)
	assert.Error(t, err)
}

func TestRectifyDegenerateCorrespondences(t *testing.T) {
	t.Parallel()

	// Four detections whose outer corners collapse onto one point.
	found := make(map[int]markers.Detection, 4)
	for _, id := range sheet.RequiredMarkerIDs {
		var d markers.Detection
		d.ID = int(id)
		for j := 0; j < 4; j++ {
			d.Corners[j] = geometry.Point2D{X: 50, Y: 50}
		}
		found[int(id)] = d
	}

	frame := sheet.Render(sheet.Letter(), 1)
	defer frame.Close()

	_, _, err := Rectify(frame, found, sheet.Letter(), 1)
	var degen *DegenerateHomographyError
	require.ErrorAs(t, err, &degen)
}
