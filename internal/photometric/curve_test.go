package photometric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCurveIdentityWhenObservedMatchesExpected(t *testing.T) {
	t.Parallel()

	samples := []float64{0, 64, 128, 192, 255}
	c := BuildCurve(samples, samples)

	for i := 0; i < 256; i++ {
		assert.InDelta(t, float64(i), c.Apply(float64(i)), 1, "value %d", i)
	}
}

func TestBuildCurveInterpolatesBetweenSamples(t *testing.T) {
	t.Parallel()

	// One segment doubling the input.
	c := BuildCurve([]float64{50, 100}, []float64{100, 200})
	assert.InDelta(t, 150, c.Apply(75), 1)
}

func TestBuildCurveClampsOutsideSampledRange(t *testing.T) {
	t.Parallel()

	c := BuildCurve([]float64{50, 200}, []float64{60, 190})

	assert.InDelta(t, 60, c.Apply(0), 0.5)
	assert.InDelta(t, 60, c.Apply(49), 0.5)
	assert.InDelta(t, 190, c.Apply(201), 0.5)
	assert.InDelta(t, 190, c.Apply(255), 0.5)
}

func TestBuildCurveSortsUnorderedObservations(t *testing.T) {
	t.Parallel()

	a := BuildCurve([]float64{200, 50}, []float64{190, 60})
	b := BuildCurve([]float64{50, 200}, []float64{60, 190})
	assert.Equal(t, b, a)
}

func TestBuildCurveEmptyIsIdentity(t *testing.T) {
	t.Parallel()

	c := BuildCurve(nil, nil)
	for i := 0; i < 256; i++ {
		assert.Equal(t, uint8(i), c[i])
	}
}

func TestCurveApplyClampsDomain(t *testing.T) {
	t.Parallel()

	c := BuildCurve(nil, nil)
	assert.Equal(t, 0.0, c.Apply(-10))
	assert.Equal(t, 255.0, c.Apply(300))
}
