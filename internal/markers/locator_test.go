package markers

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"beangauge/internal/sheet"
	"beangauge/pkg/geometry"
)

func TestSelectRequiredFirstSeenWins(t *testing.T) {
	t.Parallel()

	first := Detection{ID: 2, Corners: [4]geometry.Point2D{{X: 1, Y: 1}}}
	second := Detection{ID: 2, Corners: [4]geometry.Point2D{{X: 9, Y: 9}}}
	detections := []Detection{
		{ID: 0}, first, {ID: 1}, second, {ID: 3},
	}

	found, err := SelectRequired(detections, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, first, found[2])
}

func TestSelectRequiredIgnoresForeignIDs(t *testing.T) {
	t.Parallel()

	detections := []Detection{{ID: 0}, {ID: 1}, {ID: 2}, {ID: 3}, {ID: 17}, {ID: 42}}
	found, err := SelectRequired(detections, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, found, 4)
	assert.NotContains(t, found, 17)
}

func TestSelectRequiredMissingMarkers(t *testing.T) {
	t.Parallel()

	detections := []Detection{{ID: 3}, {ID: 0}}
	_, err := SelectRequired(detections, []int{0, 1, 2, 3})

	var insufficient *InsufficientMarkersError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, []int{0, 3}, insufficient.Found)
	assert.Equal(t, []int{0, 1, 2, 3}, insufficient.Required)
}

// padFrame embeds the rendered sheet in a white border the way a
// photograph surrounds the paper; the decoder needs quiet space around
// each fiducial.
func padFrame(t *testing.T, img gocv.Mat, px int) gocv.Mat {
	t.Helper()
	padded := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(255, 255, 255, 0),
		img.Rows()+2*px, img.Cols()+2*px, gocv.MatTypeCV8UC3)
	roi := padded.Region(image.Rect(px, px, px+img.Cols(), px+img.Rows()))
	img.CopyTo(&roi)
	roi.Close()
	return padded
}

func TestDetectFindsAllFourOnRenderedSheet(t *testing.T) {
	g := sheet.Letter()
	const scale = 6.0
	img := sheet.Render(g, scale)
	defer img.Close()

	frame := padFrame(t, img, 60)
	defer frame.Close()

	detections := Detect(frame, DefaultOptions())
	found, err := SelectRequired(detections, []int{0, 1, 2, 3})
	require.NoError(t, err)
	require.Len(t, found, 4)

	// Each marker's designated outer corner must land near its sheet
	// corner, offset by the padding.
	for _, id := range sheet.RequiredMarkerIDs {
		want := g.CanonicalCorners()[int(id)].Scale(scale).Add(geometry.Point2D{X: 60, Y: 60})
		got := found[int(id)].Corners[int(id)]
		assert.InDelta(t, want.X, got.X, 3, "marker %d x", id)
		assert.InDelta(t, want.Y, got.Y, 3, "marker %d y", id)
	}
}
