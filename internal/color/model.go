package color

import "ble2wled.klederson.com/internal/led"

// Model holds the tuning constants for signal-to-color conversion.
type Model struct {
	ReferencePower   float64
	PathLossExponent float64
	NearThreshold    float64
	FarThreshold     float64
	HueShiftMax      float64
}

// DefaultModel returns the model with the stock tuning constants.
func DefaultModel() Model {
	return Model{
		ReferencePower:   DefaultReferencePower,
		PathLossExponent: DefaultPathLossExponent,
		NearThreshold:    DefaultNearThreshold,
		FarThreshold:     DefaultFarThreshold,
		HueShiftMax:      DefaultHueShiftMax,
	}
}

// Distance estimates the distance in meters for a signal reading.
func (m Model) Distance(signal int) float64 {
	return EstimateDistance(signal, m.ReferencePower, m.PathLossExponent)
}

// BeaconColor combines distance coloring, the per-ID hue shift and the
// beacon's life. life=0 yields black, life=1 the unmodified color.
func (m Model) BeaconColor(id string, signal int, life float64) led.RGB {
	base := GradientColor(m.Distance(signal), m.NearThreshold, m.FarThreshold)

	h, s, v := base.Hsv()
	h += IdentityHueShift(id, m.HueShiftMax) * 360
	r, g, b := HSVToRGB(h, s, v*clamp01(life))
	return led.RGB{R: r, G: g, B: b}
}
