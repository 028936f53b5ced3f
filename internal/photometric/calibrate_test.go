package photometric

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"beangauge/internal/sheet"
	"beangauge/pkg/colorutil"
)

func TestGainGuardsNonPositiveObservation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, gain(128, 0))
	assert.Equal(t, 1.0, gain(128, -4))
	assert.Equal(t, 2.0, gain(128, 64))
}

func TestCorrectAppliesToneCurveBeforeGain(t *testing.T) {
	t.Parallel()

	curve := BuildCurve([]float64{0, 100, 255}, []float64{0, 50, 255})
	cal := &Calibration{
		Curves: ChannelCurves{R: curve, G: curve, B: curve},
		Gains:  colorutil.RGB{R: 2, G: 2, B: 2},
	}

	// Tone first: 100 -> 50, then gain: 50*2 = 100. The reverse order would
	// land near 182.
	got := cal.Correct(colorutil.RGB{R: 100, G: 100, B: 100})
	assert.InDelta(t, 100, got.R, 1)
	assert.InDelta(t, 100, got.G, 1)
	assert.InDelta(t, 100, got.B, 1)
}

func TestCorrectClampsTo8Bit(t *testing.T) {
	t.Parallel()

	identity := BuildCurve(nil, nil)
	cal := &Calibration{
		Curves: ChannelCurves{R: identity, G: identity, B: identity},
		Gains:  colorutil.RGB{R: 3, G: 3, B: 3},
	}

	got := cal.Correct(colorutil.RGB{R: 200, G: 200, B: 200})
	assert.Equal(t, colorutil.RGB{R: 255, G: 255, B: 255}, got)
}

func TestCalibrateOnRenderedSheet(t *testing.T) {
	g := sheet.Letter()
	const scale = 6.0
	img := sheet.Render(g, scale)
	defer img.Close()

	cal, err := Calibrate(img, g, scale)
	require.NoError(t, err)

	// The render fills every ramp patch with its expected value, so the
	// curves must be near-identity at the sampled targets.
	for i, want := range g.GrayExpected {
		assert.InDelta(t, want, cal.Curves.R.Apply(want), 2, "ramp %d R", i)
		assert.InDelta(t, want, cal.Curves.G.Apply(want), 2, "ramp %d G", i)
		assert.InDelta(t, want, cal.Curves.B.Apply(want), 2, "ramp %d B", i)
	}

	// Ideal C+M+Y inks average to 170 per channel, so the gains are equal
	// across channels: no color cast on a synthetic frame.
	want := g.NeutralTarget / 170.0
	assert.InDelta(t, want, cal.Gains.R, 0.02)
	assert.InDelta(t, want, cal.Gains.G, 0.02)
	assert.InDelta(t, want, cal.Gains.B, 0.02)
	assert.InDelta(t, cal.Gains.R, cal.Gains.G, 1e-3)
	assert.InDelta(t, cal.Gains.G, cal.Gains.B, 1e-3)
}

func TestCalibrateUnitGainsWhenInksAverageToNeutral(t *testing.T) {
	g := sheet.Letter()
	const scale = 6.0
	img := sheet.Render(g, scale)
	defer img.Close()

	// Repaint the C, M and Y patches with the neutral target itself; their
	// average then already sits at the target, so no gain is needed.
	v := uint8(g.NeutralTarget)
	neutral := color.RGBA{R: v, G: v, B: v, A: 255}
	for _, x := range g.CMYKXsMM[:3] {
		rect := image.Rect(
			int((x-6)*scale), int((g.CMYKYMM-6)*scale),
			int((x+6)*scale), int((g.CMYKYMM+6)*scale))
		gocv.Rectangle(&img, rect, neutral, -1)
	}

	cal, err := Calibrate(img, g, scale)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, cal.Gains.R, 0.01)
	assert.InDelta(t, 1.0, cal.Gains.G, 0.01)
	assert.InDelta(t, 1.0, cal.Gains.B, 0.01)
}

func TestCalibrateRejectsFrameSmallerThanPatchLayout(t *testing.T) {
	g := sheet.Letter()
	img := gocv.NewMatWithSize(20, 20, gocv.MatTypeCV8UC3)
	defer img.Close()

	_, err := Calibrate(img, g, 6)
	assert.Error(t, err)
}
