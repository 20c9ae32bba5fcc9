package led

import "math"

// PixelIndex rounds a fractional strip position to the nearest pixel
// (half up) and wraps it onto [0, n).
func PixelIndex(position float64, n int) int {
	return Wrap(int(math.Floor(position+0.5)), n)
}

// PaintTrail paints a decaying trail into frame, starting at position and
// walking backwards for trailLength pixels. The pixel at offset k gets
// color scaled by fade^k. Overlapping trails keep the brightest channel.
func PaintTrail(frame Frame, position float64, color RGB, trailLength int, fade float64) {
	n := len(frame)
	if n == 0 || trailLength <= 0 {
		return
	}
	if trailLength > n {
		trailLength = n
	}

	head := PixelIndex(position, n)
	intensity := 1.0
	for k := 0; k < trailLength; k++ {
		frame.Blend(head-k, color.Scale(intensity))
		intensity *= fade
	}
}
