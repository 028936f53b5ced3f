package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beangauge/pkg/geometry"
)

func TestLetterValidates(t *testing.T) {
	t.Parallel()

	g := Letter()
	require.NoError(t, g.Validate())
	assert.Equal(t, "letter-v1", g.Version)
	assert.Equal(t, StageRound, g.StageShape)
}

func TestA4Validates(t *testing.T) {
	t.Parallel()

	g := A4()
	require.NoError(t, g.Validate())
	assert.Equal(t, "a4-v1", g.Version)
	assert.Equal(t, StageSquare, g.StageShape)
}

func TestRampTargetsDecreaseLightestFirst(t *testing.T) {
	t.Parallel()

	g := Letter()
	require.Len(t, g.GrayExpected, 11)
	assert.Equal(t, 255.0, g.GrayExpected[0])
	assert.Equal(t, 20.0, g.GrayExpected[10])
	for i := 1; i < len(g.GrayExpected); i++ {
		assert.Less(t, g.GrayExpected[i], g.GrayExpected[i-1], "step %d", i)
	}
}

func TestValidateRejectsNonMonotonicRamp(t *testing.T) {
	t.Parallel()

	g := Letter()
	g.GrayExpected[3] = g.GrayExpected[2]
	assert.Error(t, g.Validate())
}

func TestValidateRejectsStageOutsideSheet(t *testing.T) {
	t.Parallel()

	g := Letter()
	g.StageCenterMM = geometry.Point2D{X: 10, Y: 115}
	assert.Error(t, g.Validate())
}

func TestCanonicalCornersOrder(t *testing.T) {
	t.Parallel()

	g := Letter()
	c := g.CanonicalCorners()
	assert.Equal(t, geometry.Point2D{X: 0, Y: 0}, c[0])
	assert.Equal(t, geometry.Point2D{X: 180, Y: 0}, c[1])
	assert.Equal(t, geometry.Point2D{X: 180, Y: 250}, c[2])
	assert.Equal(t, geometry.Point2D{X: 0, Y: 250}, c[3])
}

func TestMarkerOriginsFlushWithCorners(t *testing.T) {
	t.Parallel()

	g := Letter()
	assert.Equal(t, geometry.Point2D{X: 0, Y: 0}, g.MarkerOrigin(MarkerTopLeft))
	assert.Equal(t, geometry.Point2D{X: 165, Y: 0}, g.MarkerOrigin(MarkerTopRight))
	assert.Equal(t, geometry.Point2D{X: 165, Y: 235}, g.MarkerOrigin(MarkerBottomRight))
	assert.Equal(t, geometry.Point2D{X: 0, Y: 235}, g.MarkerOrigin(MarkerBottomLeft))
}

func TestStageBounds(t *testing.T) {
	t.Parallel()

	b := Letter().StageBounds()
	assert.Equal(t, geometry.NewRect(40, 65, 100, 100), b)
}

func TestByName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"letter", "letter-v1", "a4", "a4-v1"} {
		g, err := ByName(name)
		require.NoError(t, err, name)
		require.NoError(t, g.Validate(), name)
	}

	_, err := ByName("tabloid")
	assert.Error(t, err)
}

func TestRenderDimensions(t *testing.T) {
	g := Letter()
	img := Render(g, 2)
	defer img.Close()

	assert.Equal(t, 360, img.Cols())
	assert.Equal(t, 500, img.Rows())
	assert.False(t, img.Empty())
}
