// Package photometric builds the per-frame tone-correction curves and
// white-balance gains from the reference patches visible in the rectified
// frame.
package photometric

import "sort"

// Curve maps every raw 8-bit intensity to a corrected intensity. Built
// once per frame from sorted (observed, expected) pairs by piecewise
// linear interpolation; immutable afterwards.
type Curve [256]uint8

type pair struct{ obs, exp float64 }

// BuildCurve constructs a curve from paired observations and expected
// targets. Inputs outside the sampled range clamp to the nearest sampled
// endpoint; no extrapolation.
func BuildCurve(observed, expected []float64) Curve {
	pairs := make([]pair, len(observed))
	for i := range observed {
		pairs[i] = pair{observed[i], expected[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].obs < pairs[j].obs })

	var c Curve
	if len(pairs) == 0 {
		for i := range c {
			c[i] = uint8(i)
		}
		return c
	}

	for i := 0; i < 256; i++ {
		x := float64(i)
		c[i] = quantize(interpolate(x, pairs))
	}
	return c
}

func interpolate(x float64, pairs []pair) float64 {
	n := len(pairs)
	if x <= pairs[0].obs {
		return pairs[0].exp
	}
	if x >= pairs[n-1].obs {
		return pairs[n-1].exp
	}
	// Find the segment containing x.
	j := sort.Search(n, func(k int) bool { return pairs[k].obs >= x }) - 1
	a, b := pairs[j], pairs[j+1]
	if b.obs == a.obs {
		return b.exp
	}
	t := (x - a.obs) / (b.obs - a.obs)
	return a.exp + t*(b.exp-a.exp)
}

func quantize(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// Apply looks up the corrected intensity for a raw value, clamping the
// raw value to the 8-bit domain first.
func (c Curve) Apply(v float64) float64 {
	idx := int(v)
	if idx < 0 {
		idx = 0
	}
	if idx > 255 {
		idx = 255
	}
	return float64(c[idx])
}
