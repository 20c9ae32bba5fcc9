// Package color turns beacon signal readings into pixel colors.
//
// Every function here is pure: no I/O, no clocks, no shared state.
package color

import (
	"crypto/sha256"
	"encoding/binary"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Defaults for the log-distance path loss model and the color ramp.
const (
	DefaultReferencePower   = -59.0 // RSSI at 1 meter (dBm)
	DefaultPathLossExponent = 2.0   // free space
	DefaultNearThreshold    = 0.5   // meters
	DefaultFarThreshold     = 10.0  // meters
	DefaultHueShiftMax      = 0.08  // fraction of the hue circle
)

var (
	// NearColor is shown at or below the near threshold.
	NearColor = colorful.Color{R: 1, G: 1, B: 0}
	// FarColor is shown at or beyond the far threshold.
	FarColor = colorful.Color{R: 1, G: 0, B: 0}
)

// EstimateDistance inverts the log-distance path loss model:
// d = 10^((referencePower - signal) / (10 * n)).
// pathLossExponent must be positive.
func EstimateDistance(signal int, referencePower, pathLossExponent float64) float64 {
	return math.Pow(10, (referencePower-float64(signal))/(10*pathLossExponent))
}

// GradientColor maps a distance onto the near→far ramp with a linear RGB
// blend between the two thresholds. near must be less than far.
func GradientColor(distance, near, far float64) colorful.Color {
	if distance < 0 {
		distance = 0
	}
	if distance <= near {
		return NearColor
	}
	if distance >= far {
		return FarColor
	}
	t := (distance - near) / (far - near)
	return NearColor.BlendRgb(FarColor, t)
}

// IdentityHueShift derives a stable hue offset for a beacon ID, as a fraction
// of the hue circle in [0, maxShift]. The same ID yields the same offset in
// every process.
func IdentityHueShift(id string, maxShift float64) float64 {
	h := sha256.Sum256([]byte(id))
	val := binary.BigEndian.Uint32(h[:4])
	return float64(val) / float64(math.MaxUint32) * maxShift
}

// HSVToRGB converts hue in degrees and saturation/value in [0, 1] to an
// 8-bit color, rounding each channel to the nearest integer. Hue wraps.
func HSVToRGB(h, s, v float64) (r, g, b uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return colorful.Hsv(h, clamp01(s), clamp01(v)).Clamped().RGB255()
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
