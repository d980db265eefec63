// Package minimap paints a top-down color-graded view of chunk heights
// into an RGBA texture buffer, centered on the Streaming Coordinator's
// current window center.
package minimap

// stop is one point on the piecewise-linear height gradient.
type stop struct {
	t          float32
	r, g, b, a uint8
}

// stops fixes the gradient every caller must agree on: deep water,
// shallow water, sand, grass, rock, snow.
var stops = []stop{
	{0.0, 10, 20, 80, 255},
	{0.3, 40, 90, 200, 255},
	{0.35, 220, 200, 140, 255},
	{0.4, 60, 140, 60, 255},
	{0.8, 120, 120, 120, 255},
	{1.0, 250, 250, 250, 255},
}

// Color samples the gradient at h/heightRange clamped to [0, 1].
func Color(h, heightRange float32) (r, g, b, a uint8) {
	t := h / heightRange
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	for i := 0; i < len(stops)-1; i++ {
		lo, hi := stops[i], stops[i+1]
		if t >= lo.t && t <= hi.t {
			span := hi.t - lo.t
			if span == 0 {
				return hi.r, hi.g, hi.b, hi.a
			}
			frac := (t - lo.t) / span
			return lerp(lo.r, hi.r, frac), lerp(lo.g, hi.g, frac), lerp(lo.b, hi.b, frac), lerp(lo.a, hi.a, frac)
		}
	}
	last := stops[len(stops)-1]
	return last.r, last.g, last.b, last.a
}

func lerp(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}
